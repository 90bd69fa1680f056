package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/obddash/internal/conn"
)

// Key bindings as constants for consistency.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyConnect    = "c"
	KeyNextPort   = "p"
	KeyNextBaud   = "b"
	KeyRescan     = "r"
	KeyToggleHelp = "?"
	KeyCollapse   = "esc"
)

// HandleKeyMsg processes keyboard input. It returns false for keys it does
// not bind.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		if m.quitting {
			return true, nil
		}
		m.quitting = true
		m.busy = true
		return true, tea.Sequence(m.disconnectCmd(), tea.Quit)

	case KeyConnect:
		return true, m.toggleConnection()

	case KeyNextPort:
		if len(m.ports) > 0 {
			m.portIdx = (m.portIdx + 1) % len(m.ports)
			m.notice = ""
		}
		return true, nil

	case KeyNextBaud:
		m.baudIdx = (m.baudIdx + 1) % len(m.bauds)
		return true, nil

	case KeyRescan:
		return true, m.scanPortsCmd()
	}

	return false, nil
}

// toggleConnection connects when idle and disconnects otherwise. Presses
// while a previous request is in flight are ignored.
func (m *Model) toggleConnection() tea.Cmd {
	if m.busy {
		return nil
	}
	switch m.conn.State().Kind {
	case conn.Connected, conn.Connecting:
		m.busy = true
		return m.disconnectCmd()
	}

	port := m.Port()
	if port == "" {
		m.notice = "No serial port selected. Press r to rescan."
		return nil
	}
	m.busy = true
	m.notice = ""
	return m.connectCmd(port, m.Baud())
}
