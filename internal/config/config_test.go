package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Empty(t, cfg.Device.Port)
	assert.Equal(t, 9600, cfg.Device.Baud)
	assert.Equal(t, time.Second, cfg.Device.ReadTimeout)
	assert.Equal(t, 16*time.Millisecond, cfg.Render.Interval)
	assert.Equal(t, 40*time.Millisecond, cfg.Animation.StartupInterval)
	assert.Equal(t, 2, cfg.Animation.StartupStep)
	assert.Equal(t, 16000.0, cfg.Animation.MaxRPM)

	assert.Equal(t, 8000.0, cfg.Gauges.RPM.Max)
	assert.Equal(t, 240.0, cfg.Gauges.Speed.Max)
	assert.Equal(t, 130.0, cfg.Gauges.Temperature.Max)
	assert.Equal(t, "yellow", cfg.Gauges.Temperature.Color)
	assert.Equal(t, "green", cfg.Gauges.Load.Color)
	assert.Equal(t, 120.0, cfg.Digital.Warning)
	assert.Equal(t, 180.0, cfg.Digital.Danger)
	assert.Empty(t, cfg.Metrics.Listen)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
device:
  port: /dev/ttyUSB0
  baud: 115200
  read_timeout: 250ms
render:
  interval: 33ms
gauges:
  rpm:
    max: 7000
    color: red
digital:
  warning: 100
metrics:
  listen: 127.0.0.1:9110
log:
  file: ~/logs/obddash.log
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Device.Port)
	assert.Equal(t, 115200, cfg.Device.Baud)
	assert.Equal(t, 250*time.Millisecond, cfg.Device.ReadTimeout)
	assert.Equal(t, 33*time.Millisecond, cfg.Render.Interval)
	assert.Equal(t, time.Second, cfg.Render.PlainInterval, "unset keys keep defaults")

	assert.Equal(t, 7000.0, cfg.Gauges.RPM.Max)
	assert.Equal(t, "red", cfg.Gauges.RPM.Color)
	assert.Equal(t, "RPM", cfg.Gauges.RPM.Label, "partial gauge override keeps the rest")
	assert.Equal(t, 270.0, cfg.Gauges.RPM.SweepAngle)
	assert.Equal(t, 240.0, cfg.Gauges.Speed.Max)

	assert.Equal(t, 100.0, cfg.Digital.Warning)
	assert.Equal(t, 180.0, cfg.Digital.Danger)
	assert.Equal(t, "127.0.0.1:9110", cfg.Metrics.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "obddash.log"), cfg.Log.File)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("device:\n  port: /dev/ttyS0\n"), 0o644))

	t.Setenv("OBDDASH_DEVICE_PORT", "/dev/ttyACM1")
	t.Setenv("OBDDASH_DEVICE_BAUD", "57600")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM1", cfg.Device.Port)
	assert.Equal(t, 57600, cfg.Device.Baud)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("device: [unclosed"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("wrong type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("device:\n  baud: fast\n"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid config format")
	})
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

		found, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Specified config file not found")
	})

	t.Run("current directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 1\n"), 0o644))
		t.Chdir(dir)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, ConfigFileName, filepath.Base(found))
	})

	t.Run("parent directory below git root", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version: 1\n"), 0o644))
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		assert.Equal(t, filepath.Join(root, ConfigFileName), findInParents(nested, ""))
	})

	t.Run("walk stops at git root", func(t *testing.T) {
		outer := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(outer, ConfigFileName), []byte("version: 1\n"), 0o644))
		repo := filepath.Join(outer, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
		nested := filepath.Join(repo, "src")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		assert.Empty(t, findInParents(nested, ""))
	})
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig().Device, cfg.Device)
	assert.Equal(t, ExpandPath(DefaultConfig().Log.File), cfg.Log.File)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("USER", "driver")

	tmp := strings.TrimRight(os.TempDir(), string(filepath.Separator))

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Join(tmp, "obddash.log"), ExpandPath("${TMPDIR}/obddash.log"))
	assert.Equal(t, filepath.Join(home, "x.log"), ExpandPath("~/x.log"))
	assert.Equal(t, filepath.Join(home, "x.log"), ExpandPath("${HOME}/x.log"))
	assert.Equal(t, "/var/log/driver.log", ExpandPath("/var/log/${USER}.log"))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, "relative/path", ExpandTilde("relative/path"))
}
