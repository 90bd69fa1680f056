package tui

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/obddash/internal/animation"
	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/dashboard"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/gauge"
	"github.com/rileyhilliard/obddash/internal/telemetry"
)

type fakeLink struct {
	mu          sync.Mutex
	state       conn.State
	connectErr  error
	connects    []string
	disconnects int
}

func (f *fakeLink) Connect(port string, baud int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, port+"@"+strconv.Itoa(baud))
	if f.connectErr != nil {
		f.state = conn.State{Kind: conn.Error, Message: f.connectErr.Error()}
		return f.connectErr
	}
	f.state = conn.State{Kind: conn.Connected}
	return nil
}

func (f *fakeLink) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.state = conn.State{Kind: conn.Disconnected}
}

func (f *fakeLink) State() conn.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func key(s string) tea.KeyMsg {
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts Options) (Model, *fakeLink, *telemetry.State) {
	t.Helper()
	link := &fakeLink{}
	state := telemetry.NewState()
	epoch := time.Date(2026, 5, 1, 9, 15, 0, 0, time.UTC)

	opts.Compositor = dashboard.New(state, dashboard.DefaultSpecs(),
		dashboard.WithClock(animation.NewClock(epoch, 16000)))
	opts.Link = link
	opts.Conn = link
	m := NewModel(opts)
	m.now = epoch
	return m, link, state
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestNewModel_Selection(t *testing.T) {
	m, _, _ := newTestModel(t, Options{
		Ports: []string{"/dev/ttyACM0", "/dev/ttyUSB0"},
		Port:  "/dev/ttyUSB0",
		Baud:  57600,
	})
	assert.Equal(t, "/dev/ttyUSB0", m.Port())
	assert.Equal(t, 57600, m.Baud())

	m, _, _ = newTestModel(t, Options{Ports: []string{"/dev/ttyACM0"}, Port: "/dev/rfcomm0", Baud: 1234})
	assert.Equal(t, "/dev/rfcomm0", m.Port(), "configured port is kept even if not enumerated")
	assert.Equal(t, []string{"/dev/rfcomm0", "/dev/ttyACM0"}, m.ports)
	assert.Equal(t, 9600, m.Baud(), "unknown baud falls back to the first supported rate")
}

func TestStartupTick_HaltsAtBoot(t *testing.T) {
	m, _, _ := newTestModel(t, Options{BootStep: 30})

	var cmd tea.Cmd
	ticks := 0
	for {
		m, cmd = update(t, m, startupTickMsg(time.Now()))
		ticks++
		if cmd == nil {
			break
		}
		require.Less(t, ticks, 10)
	}

	assert.Equal(t, 4, ticks)
	assert.Equal(t, animation.BootComplete, m.Progress())

	m, cmd = update(t, m, startupTickMsg(time.Now()))
	assert.Nil(t, cmd)
	assert.Equal(t, animation.BootComplete, m.Progress())
}

func TestRenderTick_Rearms(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	m, cmd := update(t, m, renderTickMsg(at))
	assert.NotNil(t, cmd)
	assert.Equal(t, at, m.now)
	assert.Equal(t, 0, m.Progress(), "render ticks never advance the boot")
}

func TestConnectKey(t *testing.T) {
	m, link, _ := newTestModel(t, Options{Port: "/dev/ttyUSB0", Baud: 9600})

	m, cmd := update(t, m, key("c"))
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	// A second press while the first is in flight does nothing.
	_, again := update(t, m, key("c"))
	assert.Nil(t, again)

	m, _ = update(t, m, cmd())
	assert.False(t, m.busy)
	assert.Equal(t, []string{"/dev/ttyUSB0@9600"}, link.connects)
	assert.Equal(t, conn.Connected, link.State().Kind)

	// Pressing again disconnects.
	m, cmd = update(t, m, key("c"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.False(t, m.busy)
	assert.Equal(t, 1, link.disconnects)
}

func TestConnectKey_Error(t *testing.T) {
	m, link, _ := newTestModel(t, Options{Port: "/dev/ttyUSB9"})
	link.connectErr = errors.New(errors.ErrConn, "Serial port /dev/ttyUSB9 isn't available", "Plug it in")

	m, cmd := update(t, m, key("c"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.False(t, m.busy)
	assert.Contains(t, m.notice, "isn't available")
	assert.Equal(t, conn.Error, link.State().Kind)

	// Error state reconnects on the next press.
	link.connectErr = nil
	m, cmd = update(t, m, key("c"))
	require.NotNil(t, cmd)
	update(t, m, cmd())
	assert.Len(t, link.connects, 2)
}

func TestConnectKey_NoPort(t *testing.T) {
	m, link, _ := newTestModel(t, Options{})

	m, cmd := update(t, m, key("c"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, "No serial port")
	assert.Empty(t, link.connects)
}

func TestCycleKeys(t *testing.T) {
	m, _, _ := newTestModel(t, Options{Ports: []string{"a", "b"}, Baud: 115200})

	m, _ = update(t, m, key("p"))
	assert.Equal(t, "b", m.Port())
	m, _ = update(t, m, key("p"))
	assert.Equal(t, "a", m.Port())

	m, _ = update(t, m, key("b"))
	assert.Equal(t, 9600, m.Baud(), "baud wraps around")
	m, _ = update(t, m, key("b"))
	assert.Equal(t, 19200, m.Baud())
}

func TestRescan(t *testing.T) {
	m, _, _ := newTestModel(t, Options{
		Ports:     []string{"a", "b"},
		Port:      "b",
		ListPorts: func() ([]string, error) { return []string{"b", "c"}, nil },
	})

	m, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, []string{"b", "c"}, m.ports)
	assert.Equal(t, "b", m.Port(), "selection survives a rescan")

	m, _ = update(t, m, portsMsg{})
	assert.Equal(t, "", m.Port())
	assert.Equal(t, "No serial ports found", m.notice)
}

func TestHelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = update(t, m, key("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, key("esc"))
	assert.False(t, m.showHelp)
}

func TestQuit_DisconnectsFirst(t *testing.T) {
	m, _, _ := newTestModel(t, Options{})

	m, cmd := update(t, m, key("q"))
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "", m.View())

	_, again := update(t, m, key("ctrl+c"))
	assert.Nil(t, again)
}

func TestView(t *testing.T) {
	m, link, state := newTestModel(t, Options{Port: "/dev/ttyUSB0", Baud: 38400})
	state.Set(telemetry.Sample{Speed: 88, RPM: 2500, Load: 30, Temp: 90})
	link.state = conn.State{Kind: conn.Connected}

	assert.Equal(t, "Starting...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	for m.boot.Tick() {
	}

	out := m.View()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 40)
	assert.Contains(t, lines[0], "connected")
	assert.Contains(t, lines[0], "/dev/ttyUSB0 @ 38400")
	assert.Contains(t, out, "2500")
	assert.Contains(t, out, "90°C")
	assert.Contains(t, out, "30.0%")
	assert.Contains(t, out, "km/h")
	assert.Contains(t, out, "09:15")
	assert.NotContains(t, out, dashboard.WaitingHint)
	assert.Contains(t, lines[len(lines)-1], "c connect")
}

func TestCanvas_Dot(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Dot(0, 0, gauge.ThemeColor)
	c.Dot(3, 3, gauge.ThemeColor)
	c.Dot(-1, 0, gauge.ThemeColor)
	c.Dot(4, 0, gauge.ThemeColor)

	assert.Equal(t, "⠁⢀", c.Render(1))
	assert.Equal(t, dashboard.Size{W: 4, H: 4}, c.Size())
}

func TestCanvas_Line(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Line(gauge.Point{X: 0, Y: 0}, gauge.Point{X: 0, Y: 3}, gauge.ThemeColor)

	assert.Equal(t, "⡇", c.Render(1))
}

func TestCanvas_TextOverridesDots(t *testing.T) {
	c := NewCanvas(7, 1)
	c.Line(gauge.Point{X: 0, Y: 0}, gauge.Point{X: 13, Y: 0}, gauge.ThemeColor)
	c.Text(gauge.Point{X: 7, Y: 1}, "abc", gauge.LabelColor)

	assert.Equal(t, "⠉⠉abc⠉⠉", c.Render(1))
}

func TestCanvas_TextClipped(t *testing.T) {
	c := NewCanvas(3, 2)
	c.TextLeft(gauge.Point{X: 2, Y: 4}, "hello", gauge.LabelColor)
	c.TextLeft(gauge.Point{X: 0, Y: 40}, "gone", gauge.LabelColor)

	assert.Equal(t, "   \n he", c.Render(1))
}

func TestCanvas_RenderColors(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	defer lipgloss.SetColorProfile(prev)

	c := NewCanvas(2, 1)
	c.Dot(0, 0, gauge.ThemeColor)
	c.Dot(2, 0, gauge.DangerColor)

	out := c.Render(1)
	assert.Contains(t, out, "\x1b[38;2;30;170;230m⠁")
	assert.Equal(t, 2, strings.Count(out, "\x1b[38;2;"), "one escape per ink run")

	// Faded ink no longer matches the full-strength colour.
	assert.NotContains(t, c.Render(0.5), "38;2;30;170;230m")
}

func TestShade(t *testing.T) {
	assert.Equal(t, "#1EAAE6", string(shade(gauge.ThemeColor, 1)))
	assert.Equal(t, "#141923", strings.ToUpper(string(shade(gauge.ThemeColor, 0))))
}

func TestFormatStatus(t *testing.T) {
	state := telemetry.NewState()
	state.Set(telemetry.Sample{Speed: 150, RPM: 3500, Load: 45, Temp: 88})
	comp := dashboard.New(state, dashboard.DefaultSpecs())
	at := time.Date(2026, 5, 1, 7, 3, 9, 0, time.UTC)

	f := comp.Render(at, dashboard.Size{}, animation.BootComplete, conn.State{Kind: conn.Connected})
	assert.Equal(t, "07:03:09 connected    speed=150 km/h rpm=3500 load=45.0% temp=88°C [warning]", FormatStatus(f))

	f = comp.Render(at, dashboard.Size{}, animation.BootComplete, conn.State{Kind: conn.Error, Message: "read failed"})
	assert.True(t, strings.HasSuffix(FormatStatus(f), "(read failed)"))
}

func TestPlainPrinter_Print(t *testing.T) {
	state := telemetry.NewState()
	comp := dashboard.New(state, dashboard.DefaultSpecs())
	link := &fakeLink{}
	var buf bytes.Buffer

	p := NewPlainPrinter(&buf, comp, link, 0)
	require.NoError(t, p.Print(time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)))

	assert.Equal(t, "07:00:00 disconnected speed=0 km/h rpm=0 load=0.0% temp=0°C\n", buf.String())
	assert.Equal(t, time.Second, p.interval)
}
