package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/obddash/internal/conn"
)

const chromeRows = 2

// View renders the cluster.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	state := m.conn.State()
	cols, rows := m.width, max(m.height-chromeRows, 0)
	frame := m.comp.Render(m.now, SurfaceFor(cols, rows), m.boot.Progress(), state)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(state),
		Rasterize(frame, cols, rows),
		m.renderFooter(),
	)
}

func (m Model) renderHeader(state conn.State) string {
	var indicator string
	switch {
	case state.Kind == conn.Connecting || (m.busy && !m.quitting):
		indicator = m.spinner.View()
	case state.Kind == conn.Connected:
		indicator = StateStyle(state.Kind).Render(StatusConnected)
	case state.Kind == conn.Error:
		indicator = StateStyle(state.Kind).Render(StatusError)
	default:
		indicator = StateStyle(state.Kind).Render(StatusDisconnected)
	}

	port := m.Port()
	if port == "" {
		port = "no port"
	}
	device := LabelStyle.Render(fmt.Sprintf("%s @ %d", port, m.Baud()))

	line := TitleStyle.Render("obddash") + "  " +
		indicator + " " + StateStyle(state.Kind).Render(state.String()) + "  " + device
	return HeaderStyle.MaxWidth(m.width).Render(line)
}

func (m Model) renderFooter() string {
	hints := []string{"c connect", "p port", "b baud", "r rescan", "? help", "q quit"}
	line := strings.Join(hints, " · ")
	if m.notice != "" {
		line = NoticeStyle.Render(m.notice) + "  " + line
	}
	return FooterStyle.MaxWidth(m.width).Render(line)
}
