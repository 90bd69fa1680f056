package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/obddash/internal/animation"
	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/dashboard"
	"github.com/rileyhilliard/obddash/internal/gauge"
)

// PlainPrinter writes one status line per interval, for when stdout is not
// a terminal.
type PlainPrinter struct {
	out      io.Writer
	comp     *dashboard.Compositor
	conn     StateReader
	interval time.Duration
}

// NewPlainPrinter creates a printer. A non-positive interval defaults to 1s.
func NewPlainPrinter(out io.Writer, comp *dashboard.Compositor, conn StateReader, interval time.Duration) *PlainPrinter {
	if interval <= 0 {
		interval = time.Second
	}
	return &PlainPrinter{out: out, comp: comp, conn: conn, interval: interval}
}

// Run prints until ctx is cancelled.
func (p *PlainPrinter) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := p.Print(now); err != nil {
				return err
			}
		}
	}
}

// Print writes the status line for now.
func (p *PlainPrinter) Print(now time.Time) error {
	f := p.comp.Render(now, dashboard.Size{}, animation.BootComplete, p.conn.State())
	_, err := fmt.Fprintln(p.out, FormatStatus(f))
	return err
}

// FormatStatus renders a frame as a single line of text.
func FormatStatus(f dashboard.Frame) string {
	s := f.Sample
	speed := f.Digital.Readout
	line := fmt.Sprintf("%s %-12s speed=%s %s rpm=%s load=%s temp=%s",
		f.Time.Format("15:04:05"),
		f.Conn.Kind,
		speed.Text, speed.Unit,
		gauge.FormatValue(gauge.KindRPM, s.RPM),
		gauge.FormatValue(gauge.KindLoad, s.Load),
		gauge.FormatValue(gauge.KindTemperature, s.Temp),
	)
	if speed.Level != gauge.LevelNormal {
		line += " [" + speed.Level.String() + "]"
	}
	if f.Conn.Kind == conn.Error && f.Conn.Message != "" {
		line += " (" + f.Conn.Message + ")"
	}
	return line
}
