package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// SupportedBauds are the baud rates a device may be opened at, in picker order.
var SupportedBauds = []int{9600, 19200, 38400, 57600, 115200}

// Config represents the complete .obddash.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Device    DeviceConfig    `yaml:"device" mapstructure:"device"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Animation AnimationConfig `yaml:"animation" mapstructure:"animation"`
	Gauges    GaugesConfig    `yaml:"gauges" mapstructure:"gauges"`
	Digital   DigitalConfig   `yaml:"digital" mapstructure:"digital"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DeviceConfig selects the serial device the cluster reads from.
type DeviceConfig struct {
	// Port is the serial device path, e.g. /dev/ttyUSB0 or COM3.
	// Empty means pick one interactively.
	Port string `yaml:"port" mapstructure:"port"`

	// Baud must be one of SupportedBauds.
	Baud int `yaml:"baud" mapstructure:"baud"`

	// ReadTimeout bounds each blocking read, and with it how long a
	// disconnect can wait for the worker to notice.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
}

// RenderConfig controls the redraw cadence.
type RenderConfig struct {
	Interval      time.Duration `yaml:"interval" mapstructure:"interval"`
	PlainInterval time.Duration `yaml:"plain_interval" mapstructure:"plain_interval"`
}

// AnimationConfig controls the boot fade-in and the needle wobble.
type AnimationConfig struct {
	StartupInterval time.Duration `yaml:"startup_interval" mapstructure:"startup_interval"`
	StartupStep     int           `yaml:"startup_step" mapstructure:"startup_step"`
	MaxRPM          float64       `yaml:"max_rpm" mapstructure:"max_rpm"`
}

// GaugesConfig holds one entry per analog gauge on the cluster.
type GaugesConfig struct {
	RPM         GaugeConfig `yaml:"rpm" mapstructure:"rpm"`
	Speed       GaugeConfig `yaml:"speed" mapstructure:"speed"`
	Temperature GaugeConfig `yaml:"temperature" mapstructure:"temperature"`
	Load        GaugeConfig `yaml:"load" mapstructure:"load"`
}

// GaugeConfig describes a single analog gauge.
type GaugeConfig struct {
	Label string  `yaml:"label" mapstructure:"label"`
	Min   float64 `yaml:"min" mapstructure:"min"`
	Max   float64 `yaml:"max" mapstructure:"max"`

	// Color is one of "blue", "red", "yellow" or "green".
	Color string `yaml:"color" mapstructure:"color"`

	// StartAngle and SweepAngle are in degrees, counter-clockwise from
	// three o'clock. The arc starts at StartAngle and covers SweepAngle.
	StartAngle float64 `yaml:"start_angle" mapstructure:"start_angle"`
	SweepAngle float64 `yaml:"sweep_angle" mapstructure:"sweep_angle"`
}

// DigitalConfig sets the colour thresholds of the digital speed readout (km/h).
type DigitalConfig struct {
	Warning float64 `yaml:"warning" mapstructure:"warning"`
	Danger  float64 `yaml:"danger" mapstructure:"danger"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is a host:port for /metrics. Empty disables the endpoint.
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// LogConfig controls where log output goes while the dashboard owns the terminal.
type LogConfig struct {
	// File supports ~, ${HOME}, ${TMPDIR} and ${USER}.
	File string `yaml:"file" mapstructure:"file"`

	// Level is "info" or "debug".
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Device: DeviceConfig{
			Baud:        9600,
			ReadTimeout: time.Second,
		},
		Render: RenderConfig{
			Interval:      16 * time.Millisecond,
			PlainInterval: time.Second,
		},
		Animation: AnimationConfig{
			StartupInterval: 40 * time.Millisecond,
			StartupStep:     2,
			MaxRPM:          16000,
		},
		Gauges: GaugesConfig{
			RPM: GaugeConfig{
				Label: "RPM", Min: 0, Max: 8000, Color: "blue",
				StartAngle: 135, SweepAngle: 270,
			},
			Speed: GaugeConfig{
				Label: "SPEED", Min: 0, Max: 240, Color: "blue",
				StartAngle: 135, SweepAngle: 270,
			},
			Temperature: GaugeConfig{
				Label: "TEMPERATURE", Min: 0, Max: 130, Color: "yellow",
				StartAngle: 135, SweepAngle: 270,
			},
			Load: GaugeConfig{
				Label: "LOAD", Min: 0, Max: 100, Color: "green",
				StartAngle: 135, SweepAngle: 270,
			},
		},
		Digital: DigitalConfig{
			Warning: 120,
			Danger:  180,
		},
		Log: LogConfig{
			File:  "${TMPDIR}/obddash.log",
			Level: "info",
		},
	}
}
