package gauge

import "math"

// TickCount is the number of tick marks across a full sweep. Every fifth
// tick, counting from the first, is major.
const TickCount = 11

// ReferenceRadius is the radius at which Insets are expressed.
const ReferenceRadius = 100.0

// Point is a position relative to the gauge centre, in surface units, with y
// growing downward.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Polar returns the point at angle degrees and distance r from the origin.
// Angles are screen angles: 0 points right and positive turns clockwise.
func Polar(angle, r float64) Point {
	rad := angle * math.Pi / 180
	return Point{math.Cos(rad) * r, math.Sin(rad) * r}
}

// Arc is the value progress arc. StartAngle and Span use the configured
// convention: degrees counter-clockwise from three o'clock.
type Arc struct {
	Radius     float64
	StartAngle float64
	Span       float64
}

// ScreenAngle returns the screen angle at fraction f in [0, 1] along the arc.
func (a Arc) ScreenAngle(f float64) float64 {
	return -(a.StartAngle + f*a.Span)
}

// Needle points from the centre at Angle, a screen angle that already
// includes any wobble.
type Needle struct {
	Angle  float64
	Length float64
	Tip    Point
}

// Tick is one graduation mark. Major ticks carry a label.
type Tick struct {
	Angle   float64
	Outer   Point
	Inner   Point
	Major   bool
	Label   string
	LabelAt Point
}

// Text is a centred string.
type Text struct {
	Content string
	At      Point
}

// Geometry is everything needed to draw one gauge, independent of the
// surface. All points are relative to the gauge centre.
type Geometry struct {
	Radius float64
	Ratio  float64
	Color  Color
	Rings  []float64
	Arc    Arc
	Needle Needle
	Ticks  []Tick
	Value  Text
	Label  Text
}

// Insets are distances measured inward from the gauge radius, given at
// ReferenceRadius and scaled with the gauge. ValueText and LabelText are
// offsets below the centre.
type Insets struct {
	RingStep   float64
	TickOuter  float64
	MinorInner float64
	MajorInner float64
	TickLabel  float64
	Needle     float64
	Arc        float64
	ValueText  float64
	LabelText  float64
}

// DefaultInsets returns the cluster's stock proportions.
func DefaultInsets() Insets {
	return Insets{
		RingStep:   4,
		TickOuter:  2,
		MinorInner: 12,
		MajorInner: 20,
		TickLabel:  35,
		Needle:     25,
		Arc:        15,
		ValueText:  20,
		LabelText:  40,
	}
}

// Scaled returns the insets for a gauge of the given radius.
func (in Insets) Scaled(radius float64) Insets {
	f := radius / ReferenceRadius
	return Insets{
		RingStep:   in.RingStep * f,
		TickOuter:  in.TickOuter * f,
		MinorInner: in.MinorInner * f,
		MajorInner: in.MajorInner * f,
		TickLabel:  in.TickLabel * f,
		Needle:     in.Needle * f,
		Arc:        in.Arc * f,
		ValueText:  in.ValueText * f,
		LabelText:  in.LabelText * f,
	}
}

// ValueRatio maps value onto [0, 1] across s.Min..s.Max. Out-of-range
// values clamp and NaN maps to 0. An inverted range (min > max) is allowed.
func ValueRatio(s Spec, value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	r := (value - s.min) / (s.max - s.min)
	switch {
	case math.IsNaN(r), r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// Render computes the gauge geometry for value at the given radius.
// vibration is the wobble in degrees; it only moves rpm and speed needles.
// Insets are given at ReferenceRadius and scaled here.
func Render(s Spec, value, radius, vibration float64, insets Insets) Geometry {
	in := insets.Scaled(radius)
	ratio := ValueRatio(s, value)

	angle := -s.startAngle - ratio*s.sweepAngle
	if s.kind.Vibrates() && !math.IsNaN(vibration) {
		angle += vibration
	}
	needleLen := radius - in.Needle

	return Geometry{
		Radius: radius,
		Ratio:  ratio,
		Color:  s.Color(),
		Rings:  rings(radius, in.RingStep),
		Arc: Arc{
			Radius:     radius - in.Arc,
			StartAngle: s.startAngle,
			Span:       ratio * s.sweepAngle,
		},
		Needle: Needle{
			Angle:  angle,
			Length: needleLen,
			Tip:    Polar(angle, needleLen),
		},
		Ticks: ticks(s, radius, in),
		Value: Text{Content: FormatValue(s.kind, value), At: Point{0, in.ValueText}},
		Label: Text{Content: s.label, At: Point{0, in.LabelText}},
	}
}

// RingCount is the number of concentric bezel rings.
const RingCount = 3

func rings(radius, step float64) []float64 {
	out := make([]float64, RingCount)
	for i := range out {
		out[i] = radius - float64(i)*step
	}
	return out
}

func ticks(s Spec, radius float64, in Insets) []Tick {
	out := make([]Tick, TickCount)
	for i := range out {
		f := float64(i) / float64(TickCount-1)
		angle := -s.startAngle - f*s.sweepAngle
		major := i%5 == 0

		inner := radius - in.MinorInner
		if major {
			inner = radius - in.MajorInner
		}
		t := Tick{
			Angle: angle,
			Outer: Polar(angle, radius-in.TickOuter),
			Inner: Polar(angle, inner),
			Major: major,
		}
		if major {
			t.Label = intText(s.min + f*(s.max-s.min))
			t.LabelAt = Polar(angle, radius-in.TickLabel)
		}
		out[i] = t
	}
	return out
}
