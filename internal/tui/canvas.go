package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rileyhilliard/obddash/internal/dashboard"
	"github.com/rileyhilliard/obddash/internal/gauge"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 and sets one bit per dot.
const brailleBase = '⠀'

// brailleDots maps [row][col] within a cell to the bit for that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// Canvas is a terminal surface addressed in braille dots: two dots across
// and four down per cell. Text overlays whole cells.
type Canvas struct {
	cols, rows int
	mask       []uint8
	ink        []gauge.Color
	text       []rune
	textInk    []gauge.Color
}

// NewCanvas allocates a blank canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	n := cols * rows
	return &Canvas{
		cols:    cols,
		rows:    rows,
		mask:    make([]uint8, n),
		ink:     make([]gauge.Color, n),
		text:    make([]rune, n),
		textInk: make([]gauge.Color, n),
	}
}

// Size returns the canvas in dots, the unit frames are laid out in.
func (c *Canvas) Size() dashboard.Size {
	return SurfaceFor(c.cols, c.rows)
}

// SurfaceFor returns the dot size of a cols x rows cell area.
func SurfaceFor(cols, rows int) dashboard.Size {
	return dashboard.Size{W: float64(cols * 2), H: float64(rows * 4)}
}

// Dot sets the dot at (x, y). Out-of-bounds dots are ignored.
func (c *Canvas) Dot(x, y float64, col gauge.Color) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	xi, yi := int(math.Floor(x)), int(math.Floor(y))
	if xi < 0 || yi < 0 || xi >= c.cols*2 || yi >= c.rows*4 {
		return
	}
	i := (yi/4)*c.cols + xi/2
	c.mask[i] |= 1 << brailleDots[yi%4][xi%2]
	c.ink[i] = col
}

// Line draws a straight line from a to b.
func (c *Canvas) Line(a, b gauge.Point, col gauge.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		c.Dot(a.X, a.Y, col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.Dot(a.X+dx*t, a.Y+dy*t, col)
	}
}

// Circle draws a circle outline.
func (c *Canvas) Circle(center gauge.Point, r float64, col gauge.Color) {
	if r <= 0 {
		return
	}
	n := max(24, int(2*math.Pi*r))
	for k := 0; k < n; k++ {
		p := center.Add(gauge.Polar(360*float64(k)/float64(n), r))
		c.Dot(p.X, p.Y, col)
	}
}

// Arc draws a gauge progress arc around center.
func (c *Canvas) Arc(center gauge.Point, a gauge.Arc, col gauge.Color) {
	if a.Span == 0 || a.Radius <= 0 {
		return
	}
	n := max(2, int(math.Abs(a.Span)*math.Pi/180*a.Radius)+1)
	for k := 0; k <= n; k++ {
		p := center.Add(gauge.Polar(a.ScreenAngle(float64(k)/float64(n)), a.Radius))
		c.Dot(p.X, p.Y, col)
	}
}

// Text writes s centred on the cell containing at.
func (c *Canvas) Text(at gauge.Point, s string, col gauge.Color) {
	n := len([]rune(s))
	c.TextLeft(gauge.Point{X: at.X - float64(n), Y: at.Y}, s, col)
}

// TextLeft writes s starting at the cell containing at.
func (c *Canvas) TextLeft(at gauge.Point, s string, col gauge.Color) {
	if math.IsNaN(at.X) || math.IsNaN(at.Y) {
		return
	}
	row := int(math.Floor(at.Y / 4))
	start := int(math.Floor(at.X / 2))
	if row < 0 || row >= c.rows {
		return
	}
	for k, r := range []rune(s) {
		x := start + k
		if x < 0 || x >= c.cols {
			continue
		}
		i := row*c.cols + x
		c.text[i] = r
		c.textInk[i] = col
	}
}

// Rect draws a rectangle outline.
func (c *Canvas) Rect(r dashboard.Rect, col gauge.Color) {
	tl := gauge.Point{X: r.X, Y: r.Y}
	tr := gauge.Point{X: r.X + r.W, Y: r.Y}
	bl := gauge.Point{X: r.X, Y: r.Y + r.H}
	br := gauge.Point{X: r.X + r.W, Y: r.Y + r.H}
	c.Line(tl, tr, col)
	c.Line(tr, br, col)
	c.Line(br, bl, col)
	c.Line(bl, tl, col)
}

func (c *Canvas) cell(i int) (rune, gauge.Color, bool) {
	if c.text[i] != 0 {
		return c.text[i], c.textInk[i], true
	}
	if c.mask[i] != 0 {
		return brailleBase + rune(c.mask[i]), c.ink[i], true
	}
	return ' ', gauge.Color{}, false
}

// Render returns the canvas as styled lines, each colour faded toward the
// background by opacity.
func (c *Canvas) Render(opacity float64) string {
	styles := make(map[gauge.Color]lipgloss.Style)
	styleFor := func(col gauge.Color) lipgloss.Style {
		s, ok := styles[col]
		if !ok {
			s = lipgloss.NewStyle().Foreground(shade(col, opacity))
			styles[col] = s
		}
		return s
	}

	var b strings.Builder
	var run []rune
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}

		var runInk gauge.Color
		runStyled := false
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runStyled {
				b.WriteString(styleFor(runInk).Render(string(run)))
			} else {
				b.WriteString(string(run))
			}
			run = run[:0]
		}

		for col := 0; col < c.cols; col++ {
			ch, ink, styled := c.cell(row*c.cols + col)
			if styled != runStyled || (styled && ink != runInk) {
				flush()
				runInk, runStyled = ink, styled
			}
			run = append(run, ch)
		}
		flush()
	}
	return b.String()
}

// shade blends col toward the cluster background.
func shade(col gauge.Color, opacity float64) lipgloss.Color {
	if opacity >= 1 {
		return lipgloss.Color(col.Hex())
	}
	opacity = math.Max(0, opacity)
	fg := toColorful(col)
	bg := toColorful(gauge.BackgroundColor)
	return lipgloss.Color(bg.BlendRgb(fg, opacity).Clamped().Hex())
}

func toColorful(c gauge.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
