package ui

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/errors"
)

// portItem implements list.Item for the Bubbles list component.
type portItem struct {
	port conn.PortInfo
}

func (i portItem) Title() string {
	return i.port.Name
}

func (i portItem) Description() string {
	if !i.port.IsUSB {
		return "serial"
	}
	desc := SymbolUSB + " " + i.port.VID + ":" + i.port.PID
	if i.port.Product != "" {
		desc += " " + i.port.Product
	}
	return desc
}

func (i portItem) FilterValue() string {
	return i.port.Name + " " + i.port.Product
}

// PortPickerModel is a Bubble Tea model for choosing a serial port.
type PortPickerModel struct {
	list     list.Model
	selected *conn.PortInfo
	quitting bool
}

type portPickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var portPickerKeys = portPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewPortPickerModel creates a picker over ports.
func NewPortPickerModel(ports []conn.PortInfo) PortPickerModel {
	items := make([]list.Item, len(ports))
	for i, p := range ports {
		items[i] = portItem{port: p}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 80, 15)
	l.Title = "Select a serial port"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(len(ports) > 5)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	return PortPickerModel{list: l}
}

// Init implements tea.Model.
func (m PortPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PortPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Let the list own keys while the filter input is focused.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, portPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(portItem); ok {
				m.selected = &item.port
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, portPickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m PortPickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the chosen port, or nil if cancelled.
func (m PortPickerModel) Selected() *conn.PortInfo {
	return m.selected
}

// PickPort asks the user for a serial port. It returns nil if the user
// cancels, and picks the only port without asking.
func PickPort(ports []conn.PortInfo) (*conn.PortInfo, error) {
	return PickPortWithIO(ports, os.Stdout, os.Stdin)
}

// PickPortWithIO runs the port picker on custom I/O.
func PickPortWithIO(ports []conn.PortInfo, output io.Writer, input io.Reader) (*conn.PortInfo, error) {
	if len(ports) == 0 {
		return nil, errors.New(errors.ErrConn,
			"No serial ports found",
			"Plug in the adapter, or start 'obddash simulate' on a virtual port pair.")
	}
	if len(ports) == 1 {
		return &ports[0], nil
	}

	p := tea.NewProgram(NewPortPickerModel(ports), tea.WithOutput(output), tea.WithInput(input))
	final, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Port picker failed",
			"Pass --port to choose the device directly.")
	}
	if m, ok := final.(PortPickerModel); ok {
		return m.Selected(), nil
	}
	return nil, nil
}

// BaudOptions lists the baud rates as huh options, preselecting current.
func BaudOptions(bauds []int, current int) []huh.Option[int] {
	opts := make([]huh.Option[int], len(bauds))
	for i, b := range bauds {
		opts[i] = huh.NewOption(strconv.Itoa(b)+" baud", b).Selected(b == current)
	}
	return opts
}

// PickBaud asks the user for a baud rate. Cancelling keeps current.
func PickBaud(bauds []int, current int) (int, error) {
	selected := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Baud rate").
				Options(BaudOptions(bauds, current)...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return current, nil
		}
		return current, errors.WrapWithCode(err, errors.ErrConfig,
			"Baud picker failed",
			"Pass --baud to choose the rate directly.")
	}
	return selected, nil
}
