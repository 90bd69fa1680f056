// Package gauge maps telemetry values onto renderer-agnostic gauge geometry:
// arc, needle, tick marks and text placements.
package gauge

import (
	"fmt"
	"math"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/errors"
)

// Kind identifies what a gauge measures. It decides value formatting and
// whether the needle wobbles.
type Kind int

const (
	KindGeneric Kind = iota
	KindRPM
	KindSpeed
	KindTemperature
	KindLoad
)

func (k Kind) String() string {
	switch k {
	case KindRPM:
		return "rpm"
	case KindSpeed:
		return "speed"
	case KindTemperature:
		return "temperature"
	case KindLoad:
		return "load"
	default:
		return "generic"
	}
}

// Vibrates reports whether the needle wobble applies to this kind.
func (k Kind) Vibrates() bool {
	return k == KindRPM || k == KindSpeed
}

const (
	DefaultStartAngle = 135.0
	DefaultSweepAngle = 270.0
)

// Spec is the immutable description of one analog gauge. Build it with
// NewSpec.
type Spec struct {
	kind       Kind
	label      string
	min, max   float64
	startAngle float64
	sweepAngle float64
	scheme     Scheme
}

// SpecOption configures NewSpec.
type SpecOption func(*Spec)

// WithLabel overrides the kind's default label.
func WithLabel(label string) SpecOption {
	return func(s *Spec) { s.label = label }
}

// WithScheme sets the gauge colour. Defaults to Blue.
func WithScheme(scheme Scheme) SpecOption {
	return func(s *Spec) { s.scheme = scheme }
}

// WithAngles sets where the arc starts and how far it sweeps, in degrees,
// counter-clockwise from three o'clock.
func WithAngles(start, sweep float64) SpecOption {
	return func(s *Spec) {
		s.startAngle = start
		s.sweepAngle = sweep
	}
}

// NewSpec builds a gauge over [min, max]. It rejects min == max and
// non-finite bounds or angles.
func NewSpec(kind Kind, min, max float64, opts ...SpecOption) (Spec, error) {
	s := Spec{
		kind:       kind,
		label:      defaultLabel(kind),
		min:        min,
		max:        max,
		startAngle: DefaultStartAngle,
		sweepAngle: DefaultSweepAngle,
		scheme:     Blue,
	}
	for _, opt := range opts {
		opt(&s)
	}

	for _, v := range []float64{s.min, s.max, s.startAngle, s.sweepAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Spec{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("Gauge %s has a non-finite range or angle", s.label),
				"Use plain numbers for min, max, start_angle and sweep_angle")
		}
	}
	if s.min == s.max {
		return Spec{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Gauge %s has min == max (%v)", s.label, s.min),
			"Give the gauge a non-empty range")
	}
	return s, nil
}

// FromConfig builds a Spec from a gauges.<name> config entry.
func FromConfig(kind Kind, c config.GaugeConfig) (Spec, error) {
	scheme, err := ParseScheme(c.Color)
	if err != nil {
		return Spec{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Gauge %s: %v", kind, err),
			"Use blue, red, yellow or green")
	}
	opts := []SpecOption{WithScheme(scheme), WithAngles(c.StartAngle, c.SweepAngle)}
	if c.Label != "" {
		opts = append(opts, WithLabel(c.Label))
	}
	return NewSpec(kind, c.Min, c.Max, opts...)
}

func (s Spec) Kind() Kind          { return s.kind }
func (s Spec) Label() string       { return s.label }
func (s Spec) Min() float64        { return s.min }
func (s Spec) Max() float64        { return s.max }
func (s Spec) StartAngle() float64 { return s.startAngle }
func (s Spec) SweepAngle() float64 { return s.sweepAngle }
func (s Spec) Scheme() Scheme      { return s.scheme }
func (s Spec) Color() Color        { return s.scheme.Color() }

func (s Spec) String() string {
	return fmt.Sprintf("%s[%g..%g]", s.label, s.min, s.max)
}

func defaultLabel(k Kind) string {
	switch k {
	case KindRPM:
		return "RPM"
	case KindSpeed:
		return "SPEED"
	case KindTemperature:
		return "TEMPERATURE"
	case KindLoad:
		return "LOAD"
	default:
		return ""
	}
}
