package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rileyhilliard/obddash/internal/errors"
)

// GaugeColors are the accepted values for GaugeConfig.Color.
var GaugeColors = []string{"blue", "red", "yellow", "green"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but obddash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade obddash or lower the version field.")
	}

	if err := validateDevice(cfg.Device); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'device' section in your .obddash.yaml.")
	}

	if err := validateTiming(cfg.Render, cfg.Animation); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'render' and 'animation' sections in your .obddash.yaml.")
	}

	gauges := []struct {
		name string
		g    GaugeConfig
	}{
		{"rpm", cfg.Gauges.RPM},
		{"speed", cfg.Gauges.Speed},
		{"temperature", cfg.Gauges.Temperature},
		{"load", cfg.Gauges.Load},
	}
	for _, entry := range gauges {
		if err := validateGauge(entry.name, entry.g); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'gauges' section in your .obddash.yaml.")
		}
	}

	if err := validateDigital(cfg.Digital); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'digital' section in your .obddash.yaml.")
	}

	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section in your .obddash.yaml.")
	}

	return nil
}

// ValidBaud reports whether baud is one of SupportedBauds.
func ValidBaud(baud int) bool {
	return slices.Contains(SupportedBauds, baud)
}

func validateDevice(d DeviceConfig) error {
	if !ValidBaud(d.Baud) {
		return fmt.Errorf("device.baud %d isn't supported (use one of %s)", d.Baud, baudList())
	}
	if d.ReadTimeout <= 0 {
		return fmt.Errorf("device.read_timeout must be positive, got %s", d.ReadTimeout)
	}
	return nil
}

func validateTiming(r RenderConfig, a AnimationConfig) error {
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"render.interval", r.Interval},
		{"render.plain_interval", r.PlainInterval},
		{"animation.startup_interval", a.StartupInterval},
	}
	for _, entry := range durations {
		if entry.d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", entry.name, entry.d)
		}
	}

	if a.StartupStep < 1 || a.StartupStep > 100 {
		return fmt.Errorf("animation.startup_step must be between 1 and 100, got %d", a.StartupStep)
	}
	if !finite(a.MaxRPM) || a.MaxRPM <= 0 {
		return fmt.Errorf("animation.max_rpm must be a positive number, got %v", a.MaxRPM)
	}
	return nil
}

func validateGauge(name string, g GaugeConfig) error {
	for field, v := range map[string]float64{
		"min":         g.Min,
		"max":         g.Max,
		"start_angle": g.StartAngle,
		"sweep_angle": g.SweepAngle,
	} {
		if !finite(v) {
			return fmt.Errorf("gauges.%s.%s must be a finite number", name, field)
		}
	}

	if g.Min == g.Max {
		return fmt.Errorf("gauges.%s has min == max (%v), so it can't show a value", name, g.Min)
	}
	if !slices.Contains(GaugeColors, g.Color) {
		return fmt.Errorf("gauges.%s.color %q isn't a known color (use one of %s)", name, g.Color, strings.Join(GaugeColors, ", "))
	}
	return nil
}

func validateDigital(d DigitalConfig) error {
	if !finite(d.Warning) || !finite(d.Danger) {
		return fmt.Errorf("digital thresholds must be finite numbers")
	}
	if d.Warning > d.Danger {
		return fmt.Errorf("digital.warning (%v) must not exceed digital.danger (%v)", d.Warning, d.Danger)
	}
	return nil
}

func validateLog(l LogConfig) error {
	switch l.Level {
	case "", "info", "debug":
		return nil
	default:
		return fmt.Errorf("log.level %q isn't valid (use 'info' or 'debug')", l.Level)
	}
}

func baudList() string {
	parts := make([]string, len(SupportedBauds))
	for i, b := range SupportedBauds {
		parts[i] = fmt.Sprint(b)
	}
	return strings.Join(parts, ", ")
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
