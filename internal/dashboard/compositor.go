// Package dashboard composes one frame of the instrument cluster from the
// latest telemetry snapshot, the animation clock and the gauge renderer.
package dashboard

import (
	"time"

	"github.com/rileyhilliard/obddash/internal/animation"
	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/gauge"
	"github.com/rileyhilliard/obddash/internal/telemetry"
)

// WaitingHint is shown once the boot fade-in finishes while no device is
// connected.
const WaitingHint = "Waiting for data from serial port..."

// Source yields the latest complete sample. *telemetry.State satisfies it.
type Source interface {
	Get() telemetry.Sample
}

// Specs are the four analog gauges, in stacking order.
type Specs struct {
	RPM         gauge.Spec
	Speed       gauge.Spec
	Temperature gauge.Spec
	Load        gauge.Spec
}

// DefaultSpecs builds the stock cluster gauges.
func DefaultSpecs() Specs {
	specs, err := SpecsFromConfig(config.DefaultConfig().Gauges)
	if err != nil {
		panic(err) // defaults are static
	}
	return specs
}

// SpecsFromConfig builds every gauge from the gauges config section.
func SpecsFromConfig(c config.GaugesConfig) (Specs, error) {
	var (
		s   Specs
		err error
	)
	if s.RPM, err = gauge.FromConfig(gauge.KindRPM, c.RPM); err != nil {
		return Specs{}, err
	}
	if s.Speed, err = gauge.FromConfig(gauge.KindSpeed, c.Speed); err != nil {
		return Specs{}, err
	}
	if s.Temperature, err = gauge.FromConfig(gauge.KindTemperature, c.Temperature); err != nil {
		return Specs{}, err
	}
	if s.Load, err = gauge.FromConfig(gauge.KindLoad, c.Load); err != nil {
		return Specs{}, err
	}
	return s, nil
}

// GaugePanel is one rendered analog gauge placed on the surface.
type GaugePanel struct {
	Spec     gauge.Spec
	Value    float64
	Center   gauge.Point
	Geometry gauge.Geometry
}

// DigitalPanel is the digital speed readout.
type DigitalPanel struct {
	Rect    Rect
	Readout gauge.Readout
}

// TextPanel is a single string in a box, or anchored at a point when Rect
// is empty.
type TextPanel struct {
	Rect  Rect
	At    gauge.Point
	Text  string
	Color gauge.Color
}

// Frame is everything drawn in one render pass.
type Frame struct {
	Size      Size
	Time      time.Time
	Opacity   float64
	Animation animation.State
	Sample    telemetry.Sample
	Conn      conn.State

	Gauges  []GaugePanel
	Digital DigitalPanel
	Clock   TextPanel

	// Hint is nil until boot completes, and while a device is connected.
	Hint *TextPanel
}

// Compositor renders frames. It holds no mutable state, so Render may be
// called from any goroutine.
type Compositor struct {
	source     Source
	specs      Specs
	clock      animation.Clock
	thresholds gauge.Thresholds
	insets     gauge.Insets
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithClock sets the animation clock. Defaults to one started at New.
func WithClock(c animation.Clock) Option {
	return func(comp *Compositor) { comp.clock = c }
}

// WithThresholds sets the digital readout colour thresholds.
func WithThresholds(th gauge.Thresholds) Option {
	return func(comp *Compositor) { comp.thresholds = th }
}

// WithInsets overrides the gauge proportions.
func WithInsets(in gauge.Insets) Option {
	return func(comp *Compositor) { comp.insets = in }
}

// New creates a Compositor reading from source.
func New(source Source, specs Specs, opts ...Option) *Compositor {
	c := &Compositor{
		source:     source,
		specs:      specs,
		clock:      animation.NewClock(time.Now(), animation.DefaultMaxRPM),
		thresholds: gauge.DefaultThresholds(),
		insets:     gauge.DefaultInsets(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render builds the frame for now on a surface of the given size. progress
// is the boot progress in [0, 100]. An empty surface yields only the
// snapshot, the overlays and the digital readout.
func (c *Compositor) Render(now time.Time, surface Size, progress int, state conn.State) Frame {
	sample := c.source.Get()
	anim := c.clock.At(now, sample.RPM, progress)

	f := Frame{
		Size:      surface,
		Time:      now,
		Opacity:   animation.OpacityFor(progress),
		Animation: anim,
		Sample:    sample,
		Conn:      state,
		Digital:   DigitalPanel{Readout: gauge.Digital(sample.Speed, c.thresholds)},
	}
	if surface.Empty() {
		return f
	}

	l := NewLayout(surface)
	f.Gauges = []GaugePanel{
		c.gauge(c.specs.RPM, sample.RPM, l.RPM, anim.NeedleVibration),
		c.gauge(c.specs.Speed, sample.Speed, l.Speed, anim.NeedleVibration),
		c.gauge(c.specs.Temperature, sample.Temp, l.Temperature, anim.NeedleVibration),
		c.gauge(c.specs.Load, sample.Load, l.Load, anim.NeedleVibration),
	}
	f.Digital.Rect = l.Digital
	f.Clock = TextPanel{
		Rect:  l.Clock,
		At:    l.Clock.Center(),
		Text:  gauge.ClockText(now),
		Color: gauge.ClockColor,
	}

	if progress >= animation.BootComplete && state.Kind != conn.Connected {
		f.Hint = &TextPanel{At: l.Hint, Text: WaitingHint, Color: gauge.HintColor}
	}
	return f
}

func (c *Compositor) gauge(spec gauge.Spec, value float64, p Placement, vibration float64) GaugePanel {
	return GaugePanel{
		Spec:     spec,
		Value:    value,
		Center:   p.Center,
		Geometry: gauge.Render(spec, value, p.Radius, vibration, c.insets),
	}
}
