package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

var helpBindings = []HelpBinding{
	{Key: "c", Desc: "Connect / disconnect"},
	{Key: "p", Desc: "Next serial port"},
	{Key: "b", Desc: "Next baud rate"},
	{Key: "r", Desc: "Rescan serial ports"},
	{Key: "?", Desc: "Toggle this help"},
	{Key: "q / Ctrl+C", Desc: "Quit"},
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelpOverlay renders a centred help box with the key bindings.
func (m Model) renderHelpOverlay() string {
	lines := []string{helpTitleStyle.Render("Keyboard Shortcuts"), ""}
	for _, binding := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}
	lines = append(lines, "", LabelStyle.Render("Press ? to close"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBoxStyle.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
	)
}
