// Package tui runs the instrument cluster as a Bubble Tea program.
package tui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/obddash/internal/animation"
	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/dashboard"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/logger"
	"github.com/rileyhilliard/obddash/internal/ui"
)

// Controller opens and closes the device link. *ingest.Link satisfies it.
// Both calls may block on device I/O and only run inside tea.Cmds.
type Controller interface {
	Connect(port string, baud int) error
	Disconnect()
}

// StateReader reports the connection state. *conn.Manager satisfies it.
type StateReader interface {
	State() conn.State
}

// PortLister enumerates serial ports.
type PortLister func() ([]string, error)

// Options configures a Model.
type Options struct {
	Compositor *dashboard.Compositor
	Link       Controller
	Conn       StateReader
	ListPorts  PortLister

	// Ports seeds the port list; Port is preselected and added if missing.
	Ports []string
	Port  string
	Baud  int

	RenderInterval  time.Duration
	StartupInterval time.Duration
	BootStep        int

	// AutoConnect opens Port at Baud as soon as the program starts.
	AutoConnect bool

	Log logger.Logger
}

// Model is the Bubble Tea model for the cluster.
type Model struct {
	comp      *dashboard.Compositor
	link      Controller
	conn      StateReader
	listPorts PortLister
	log       logger.Logger

	boot            *animation.Boot
	renderInterval  time.Duration
	startupInterval time.Duration
	now             time.Time

	ports   []string
	portIdx int
	bauds   []int
	baudIdx int

	spinner  spinner.Model
	width    int
	height   int
	busy     bool
	notice   string
	showHelp bool
	quitting bool
}

// renderTickMsg drives the redraw schedule.
type renderTickMsg time.Time

// startupTickMsg drives the boot fade-in schedule.
type startupTickMsg time.Time

type connectDoneMsg struct {
	port string
	baud int
	err  error
}

type disconnectDoneMsg struct{}

type portsMsg struct {
	ports []string
	err   error
}

// NewModel builds the cluster model.
func NewModel(opts Options) Model {
	if opts.Log == nil {
		opts.Log = logger.Noop()
	}
	if opts.RenderInterval <= 0 {
		opts.RenderInterval = config.DefaultConfig().Render.Interval
	}
	if opts.StartupInterval <= 0 {
		opts.StartupInterval = config.DefaultConfig().Animation.StartupInterval
	}

	ports := slices.Clone(opts.Ports)
	portIdx := 0
	if opts.Port != "" {
		portIdx = slices.Index(ports, opts.Port)
		if portIdx < 0 {
			ports = append([]string{opts.Port}, ports...)
			portIdx = 0
		}
	}

	bauds := config.SupportedBauds
	baudIdx := max(slices.Index(bauds, opts.Baud), 0)

	sp := spinner.New()
	sp.Spinner = ui.SpinnerFrames
	sp.Style = StateStyle(conn.Connecting)

	return Model{
		comp:            opts.Compositor,
		link:            opts.Link,
		conn:            opts.Conn,
		listPorts:       opts.ListPorts,
		log:             opts.Log,
		boot:            animation.NewBoot(opts.BootStep),
		renderInterval:  opts.RenderInterval,
		startupInterval: opts.StartupInterval,
		now:             time.Now(),
		ports:           ports,
		portIdx:         portIdx,
		bauds:           bauds,
		baudIdx:         baudIdx,
		spinner:         sp,
		busy:            opts.AutoConnect && opts.Port != "",
	}
}

// Init starts both tick schedules and, when configured, the first connect.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.renderTickCmd(), m.startupTickCmd(), m.spinner.Tick}
	if m.busy {
		cmds = append(cmds, m.connectCmd(m.Port(), m.Baud()))
	}
	if len(m.ports) == 0 && m.listPorts != nil {
		cmds = append(cmds, m.scanPortsCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case renderTickMsg:
		m.now = time.Time(msg)
		return m, m.renderTickCmd()

	case startupTickMsg:
		// The schedule halts for good once boot completes.
		if m.boot.Tick() {
			return m, m.startupTickCmd()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = errors.ShortMessage(msg.err)
			m.log.Warn("connect %s @ %d failed: %v", msg.port, msg.baud, msg.err)
		}

	case disconnectDoneMsg:
		m.busy = false

	case portsMsg:
		if msg.err != nil {
			m.notice = errors.ShortMessage(msg.err)
			return m, nil
		}
		m.setPorts(msg.ports)
	}

	return m, nil
}

// setPorts replaces the port list, keeping the current selection if it is
// still present.
func (m *Model) setPorts(ports []string) {
	current := m.Port()
	m.ports = slices.Clone(ports)
	m.portIdx = max(slices.Index(m.ports, current), 0)
	if len(m.ports) == 0 {
		m.notice = "No serial ports found"
	} else if m.notice == "No serial ports found" {
		m.notice = ""
	}
}

// Port returns the selected port, or "" when none is known.
func (m Model) Port() string {
	if m.portIdx < 0 || m.portIdx >= len(m.ports) {
		return ""
	}
	return m.ports[m.portIdx]
}

// Baud returns the selected baud rate.
func (m Model) Baud() int {
	return m.bauds[m.baudIdx]
}

// Progress returns the boot progress.
func (m Model) Progress() int {
	return m.boot.Progress()
}

func (m Model) renderTickCmd() tea.Cmd {
	return tea.Tick(m.renderInterval, func(t time.Time) tea.Msg {
		return renderTickMsg(t)
	})
}

func (m Model) startupTickCmd() tea.Cmd {
	return tea.Tick(m.startupInterval, func(t time.Time) tea.Msg {
		return startupTickMsg(t)
	})
}

func (m Model) connectCmd(port string, baud int) tea.Cmd {
	link := m.link
	return func() tea.Msg {
		return connectDoneMsg{port: port, baud: baud, err: link.Connect(port, baud)}
	}
}

func (m Model) disconnectCmd() tea.Cmd {
	link := m.link
	return func() tea.Msg {
		link.Disconnect()
		return disconnectDoneMsg{}
	}
}

func (m Model) scanPortsCmd() tea.Cmd {
	list := m.listPorts
	if list == nil {
		return nil
	}
	return func() tea.Msg {
		ports, err := list()
		return portsMsg{ports: ports, err: err}
	}
}
