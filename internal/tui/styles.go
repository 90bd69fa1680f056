package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/gauge"
)

// Chrome colours around the cluster.
const (
	ColorSurfaceBg     = lipgloss.Color("#141923")
	ColorBorder        = lipgloss.Color("#3C4650")
	ColorTextPrimary   = lipgloss.Color("#E6EBF0")
	ColorTextSecondary = lipgloss.Color("#AAB4BE")
	ColorTextMuted     = lipgloss.Color("#787D87")
)

var (
	ColorAccent  = lipgloss.Color(gauge.ThemeColor.Hex())
	ColorHealthy = lipgloss.Color(gauge.NormalColor.Hex())
	ColorWarning = lipgloss.Color(gauge.WarningColor.Hex())
	ColorDanger  = lipgloss.Color(gauge.DangerColor.Hex())
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

// Connection indicator glyphs.
const (
	StatusConnected    = "●"
	StatusDisconnected = "○"
	StatusError        = "✗"
)

// StateStyle colours the connection indicator.
func StateStyle(k conn.Kind) lipgloss.Style {
	switch k {
	case conn.Connected:
		return lipgloss.NewStyle().Foreground(ColorHealthy)
	case conn.Connecting:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case conn.Error:
		return lipgloss.NewStyle().Foreground(ColorDanger)
	default:
		return lipgloss.NewStyle().Foreground(ColorTextMuted)
	}
}
