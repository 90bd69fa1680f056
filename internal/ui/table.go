package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/obddash/internal/conn"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-interactive Bubbles table with the CLI styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Unfocused tables still highlight the cursor row; keep it plain.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders rows as a static table string. It returns ""
// when there are no rows.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// PortColumns are the columns of the ports listing.
var PortColumns = []TableColumn{
	{Title: "PORT", Width: 24},
	{Title: "USB", Width: 5},
	{Title: "VID:PID", Width: 11},
	{Title: "DESCRIPTION", Width: 32},
}

// PortRows turns enumerated ports into table rows. current is marked so the
// configured device stands out.
func PortRows(ports []conn.PortInfo, current string) [][]string {
	rows := make([][]string, len(ports))
	for i, p := range ports {
		name := p.Name
		if name == current {
			name += " *"
		}
		usb, ids := "", ""
		if p.IsUSB {
			usb = "yes"
			ids = p.VID + ":" + p.PID
		}
		rows[i] = []string{name, usb, ids, p.Product}
	}
	return rows
}

// RenderPortTable renders the ports listing.
func RenderPortTable(ports []conn.PortInfo, current string) string {
	if len(ports) == 0 {
		return lipgloss.NewStyle().Foreground(ColorMuted).Render("No serial ports found")
	}
	return RenderSimpleTable(PortColumns, PortRows(ports, current))
}
