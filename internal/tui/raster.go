package tui

import (
	"github.com/rileyhilliard/obddash/internal/dashboard"
	"github.com/rileyhilliard/obddash/internal/gauge"
)

// Rasterize draws frame onto a cols x rows canvas. The frame must have been
// composed for SurfaceFor(cols, rows).
func Rasterize(f dashboard.Frame, cols, rows int) string {
	c := NewCanvas(cols, rows)
	for _, p := range f.Gauges {
		drawGauge(c, p)
	}
	drawDigital(c, f.Digital)

	if f.Clock.Text != "" {
		c.Rect(f.Clock.Rect, gauge.PanelColor)
		c.Text(f.Clock.At, f.Clock.Text, f.Clock.Color)
	}
	if f.Hint != nil {
		c.TextLeft(f.Hint.At, f.Hint.Text, f.Hint.Color)
	}
	return c.Render(f.Opacity)
}

func drawGauge(c *Canvas, p dashboard.GaugePanel) {
	g := p.Geometry
	at := p.Center

	for i, r := range g.Rings {
		c.Circle(at, r, gauge.RingColors[i%len(gauge.RingColors)])
	}
	for _, t := range g.Ticks {
		col := gauge.MinorTickColor
		if t.Major {
			col = gauge.MajorTickColor
		}
		c.Line(at.Add(t.Inner), at.Add(t.Outer), col)
	}
	c.Arc(at, g.Arc, g.Color)
	c.Line(at, at.Add(g.Needle.Tip), g.Color)
	c.Dot(at.X, at.Y, gauge.HubColor)

	// Text last so it stays readable over the dots.
	for _, t := range g.Ticks {
		if t.Major {
			c.Text(at.Add(t.LabelAt), t.Label, gauge.TickLabelColor)
		}
	}
	c.Text(at.Add(g.Value.At), g.Value.Content, g.Color)
	c.Text(at.Add(g.Label.At), g.Label.Content, gauge.LabelColor)
}

func drawDigital(c *Canvas, d dashboard.DigitalPanel) {
	if d.Rect.W <= 0 || d.Rect.H <= 0 {
		return
	}
	c.Rect(d.Rect, gauge.PanelColor)
	mid := d.Rect.Center()
	c.Text(mid, d.Readout.Text, d.Readout.Color)
	c.Text(gauge.Point{X: mid.X, Y: mid.Y + 4}, d.Readout.Unit, gauge.UnitColor)
}
