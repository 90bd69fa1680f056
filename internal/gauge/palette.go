package gauge

import "fmt"

// Color is an opaque 24-bit RGB colour.
type Color struct {
	R, G, B uint8
}

// Hex returns the colour as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Cluster palette.
var (
	ThemeColor   = Color{30, 170, 230}
	WarningColor = Color{255, 160, 0}
	DangerColor  = Color{255, 60, 60}
	NormalColor  = Color{80, 220, 170}

	BackgroundColor = Color{20, 25, 35}
	HubColor        = Color{220, 220, 220}
	PanelColor      = Color{60, 70, 80}
	MinorTickColor  = Color{120, 130, 140}
	MajorTickColor  = Color{180, 190, 200}
	TickLabelColor  = Color{160, 170, 180}
	LabelColor      = Color{170, 175, 180}
	UnitColor       = Color{200, 200, 230}
	ClockColor      = Color{180, 190, 200}
	HintColor       = Color{120, 125, 135}
)

// RingColors shade the bezel rings from the outside in.
var RingColors = [RingCount]Color{{60, 60, 70}, {80, 80, 90}, {100, 100, 110}}

// Scheme selects the fixed colour of an analog gauge.
type Scheme int

const (
	Blue Scheme = iota
	Red
	Yellow
	Green
)

// ParseScheme maps a config colour name onto a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "blue", "":
		return Blue, nil
	case "red":
		return Red, nil
	case "yellow":
		return Yellow, nil
	case "green":
		return Green, nil
	default:
		return Blue, fmt.Errorf("unknown gauge color %q", name)
	}
}

func (s Scheme) String() string {
	switch s {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return "blue"
	}
}

// Color returns the scheme's colour.
func (s Scheme) Color() Color {
	switch s {
	case Red:
		return DangerColor
	case Yellow:
		return WarningColor
	case Green:
		return NormalColor
	default:
		return ThemeColor
	}
}
