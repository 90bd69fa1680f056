package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/logger"
	"github.com/rileyhilliard/obddash/internal/obd"
	"github.com/rileyhilliard/obddash/internal/telemetry"
)

// Generator polls a simulated ECU once per interval and writes the
// adapter's `speed,rpm,load,temp` line for each complete poll.
type Generator struct {
	out      io.Writer
	interval time.Duration
	log      logger.Logger

	poller *obd.Poller
	acc    *obd.Accumulator
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Defaults to logger.Default().
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// NewGenerator writes lines to out every interval.
func NewGenerator(out io.Writer, interval time.Duration, opts ...Option) *Generator {
	g := &Generator{
		out:      out,
		interval: interval,
		log:      logger.Default(),
		poller:   obd.NewPoller(),
		acc:      obd.NewAccumulator(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Step polls every PID once for the vehicle state elapsed into the drive
// and returns the line the adapter would send, without the newline.
func (g *Generator) Step(elapsed time.Duration) (string, error) {
	truth := At(elapsed)
	for range obd.DefaultPIDs {
		pid, req := g.poller.Next()
		g.log.Debug("request %s", req)

		resp, err := obd.Response(pid, valueFor(pid, truth))
		if err != nil {
			return "", err
		}
		if _, err := g.acc.Apply(resp); err != nil {
			return "", err
		}
	}
	return g.acc.Sample().DeviceLine(), nil
}

// Run writes one line per interval until ctx is done or a write fails.
func (g *Generator) Run(ctx context.Context) error {
	if g.interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Simulation rate must be positive, got %s", g.interval),
			"Pass a duration like --rate 100ms")
	}

	start := time.Now()
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	lines := 0
	for {
		line, err := g.Step(time.Since(start))
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrIO, "Simulation failed", "")
		}
		if _, err := io.WriteString(g.out, line+"\n"); err != nil {
			return errors.WrapWithCode(err, errors.ErrIO,
				"Couldn't write simulated telemetry",
				"Check the output port is still connected")
		}
		lines++

		select {
		case <-ctx.Done():
			g.log.Info("simulation stopped after %d lines", lines)
			return nil
		case <-ticker.C:
		}
	}
}

func valueFor(pid obd.PID, s telemetry.Sample) float64 {
	switch pid {
	case obd.PIDEngineRPM:
		return s.RPM
	case obd.PIDVehicleSpeed:
		return s.Speed
	case obd.PIDCoolantTemp:
		return s.Temp
	case obd.PIDEngineLoad:
		return s.Load
	default:
		return 0
	}
}
