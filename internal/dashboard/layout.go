package dashboard

import "github.com/rileyhilliard/obddash/internal/gauge"

// ReferenceSize is the surface the fixed-size panels (clock, hint) are
// designed for. They scale with the shorter side of the actual surface.
var ReferenceSize = Size{W: 1200, H: 600}

// Size is the drawable area in surface units.
type Size struct {
	W, H float64
}

// Empty reports whether nothing can be drawn.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Rect is an axis-aligned rectangle with its origin at the top-left.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() gauge.Point {
	return gauge.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Layout holds the positions of every panel for one surface size.
type Layout struct {
	Radius float64

	RPM         Placement
	Speed       Placement
	Temperature Placement
	Load        Placement

	Digital Rect
	Clock   Rect
	Hint    gauge.Point
	Scale   float64
}

// Placement centres a gauge on the surface.
type Placement struct {
	Center gauge.Point
	Radius float64
}

// NewLayout positions the cluster on a surface: the two large gauges across
// the top third, the digital speed panel between them, the small gauges in
// the bottom corners and the clock top-right.
func NewLayout(s Size) Layout {
	r := min(s.W, s.H) / 6
	scale := min(s.W, s.H) / min(ReferenceSize.W, ReferenceSize.H)

	return Layout{
		Radius:      r,
		RPM:         Placement{gauge.Point{X: s.W * 0.25, Y: s.H * 0.33}, r * 1.1},
		Speed:       Placement{gauge.Point{X: s.W * 0.75, Y: s.H * 0.33}, r * 1.1},
		Temperature: Placement{gauge.Point{X: s.W * 0.2, Y: s.H * 0.75}, r * 0.75},
		Load:        Placement{gauge.Point{X: s.W * 0.8, Y: s.H * 0.75}, r * 0.75},
		Digital:     Rect{X: s.W/2 - r*0.8, Y: s.H * 0.40, W: r * 1.6, H: r * 0.7},
		Clock:       Rect{X: s.W - 100*scale, Y: 20 * scale, W: 80 * scale, H: 25 * scale},
		Hint:        gauge.Point{X: 10 * scale, Y: s.H - 10*scale},
		Scale:       scale,
	}
}
