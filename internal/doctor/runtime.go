package doctor

import (
	"fmt"
	"net"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/logger"
)

// LogFileCheck verifies the log file can be opened for appending.
type LogFileCheck struct {
	Path string
}

func (c *LogFileCheck) Name() string     { return "log_file" }
func (c *LogFileCheck) Category() string { return CategoryRuntime }

func (c *LogFileCheck) Run() CheckResult {
	path := config.ExpandPath(c.Path)
	if path == "" {
		return pass(c.Name(), "Logging to stderr")
	}
	f, err := logger.OpenFile(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't write log file %s: %v", path, err),
			Suggestion: "Set log.file to a writable path",
		}
	}
	_ = f.Close()
	return pass(c.Name(), "Log file: "+path)
}

func (c *LogFileCheck) Fix() error { return nil }

// MetricsListenCheck verifies the metrics address can be bound.
type MetricsListenCheck struct {
	Addr string
}

func (c *MetricsListenCheck) Name() string     { return "metrics_listen" }
func (c *MetricsListenCheck) Category() string { return CategoryRuntime }

func (c *MetricsListenCheck) Run() CheckResult {
	if c.Addr == "" {
		return pass(c.Name(), "Metrics disabled")
	}
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't listen on %s: %v", c.Addr, err),
			Suggestion: "Pick a free host:port for metrics.listen, or leave it empty",
		}
	}
	_ = ln.Close()
	return pass(c.Name(), "Metrics address "+c.Addr+" is free")
}

func (c *MetricsListenCheck) Fix() error { return nil }

// NewRuntimeChecks returns the log and metrics checks.
func NewRuntimeChecks(cfg *config.Config) []Check {
	return []Check{
		&LogFileCheck{Path: cfg.Log.File},
		&MetricsListenCheck{Addr: cfg.Metrics.Listen},
	}
}
