package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hara602/devSentry/internal/control"
	"github.com/Hara602/devSentry/internal/model"
)

const (
	maxRows        = 500
	refreshTimeout = 5 * time.Second
)

// Controller defines the subset of devsentry behaviour the TUI needs.
type Controller interface {
	StartMonitoring() bool
	StopMonitoring()
	Monitoring() bool
	KnownDevices(model.DeviceCategory) int

	Enumerate(context.Context) ([]model.DeviceRecord, error)
	Toggle(ctx context.Context, deviceID string, enable bool) error
	Logs(context.Context) (string, error)
}

type tab int

const (
	tabMonitoring tab = iota
	tabDevices
)

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller

	active tab
	table  table.Model
	rows   []table.Row

	devices  list.Model
	showLogs bool
	logs     string

	statusMsg string
	err       error
	loading   bool

	width  int
	height int

	lastRefresh time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller) *Model {
	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Device Type", Width: 12},
			{Title: "Device Name", Width: 32},
			{Title: "Application", Width: 28},
			{Title: "PID", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	tbl.SetStyles(styles)

	lst := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	lst.Title = "USB Devices"
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(false)
	lst.DisableQuitKeybindings()

	return &Model{
		controller: ctrl,
		table:      tbl,
		devices:    lst,
		statusMsg:  "Press s to start monitoring.",
		loading:    true,
	}
}

// Feed pushes external messages (usage events, hotplug) into a running program.
type Feed func(ctx context.Context, send func(tea.Msg))

// Run spins up the Bubble Tea program and attaches the feeds until it exits.
func Run(ctx context.Context, ctrl Controller, feeds ...Feed) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(New(ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	for _, feed := range feeds {
		go feed(ctx, prog.Send)
	}
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return loadDevicesCmd(m.controller)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 8 {
			m.table.SetHeight(m.height - 8)
			m.devices.SetSize(msg.Width, m.height-8)
		}
		return m, nil

	case UsageMsg:
		m.appendRow(msg.Event)
		return m, nil

	case DeviceChangedMsg:
		m.statusMsg = fmt.Sprintf("USB device %s: %s. Refreshing…", msg.Change.Action, msg.Change.DeviceID)
		m.loading = true
		return m, loadDevicesCmd(m.controller)

	case devicesLoadedMsg:
		m.loading = false
		m.err = nil
		items := make([]list.Item, 0, len(msg.devices))
		for _, d := range msg.devices {
			items = append(items, deviceItem{d})
		}
		m.devices.SetItems(items)
		m.lastRefresh = time.Now()
		return m, nil

	case toggledMsg:
		m.err = nil
		if msg.enable {
			m.statusMsg = fmt.Sprintf("Device %s enabled.", msg.deviceID)
		} else {
			m.statusMsg = fmt.Sprintf("Device %s disabled.", msg.deviceID)
		}
		return m, loadDevicesCmd(m.controller)

	case logsLoadedMsg:
		m.logs = msg.text
		m.showLogs = true
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.active == tabMonitoring {
		m.table, cmd = m.table.Update(msg)
	} else {
		m.devices, cmd = m.devices.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.controller.StopMonitoring()
		return tea.Quit, true
	case "tab":
		m.active = (m.active + 1) % 2
		m.showLogs = false
		return nil, true
	}

	if m.active == tabMonitoring {
		switch msg.String() {
		case "s":
			if m.controller.StartMonitoring() {
				m.statusMsg = "Monitoring started."
			} else {
				m.statusMsg = "Monitoring is already running."
			}
			return nil, true
		case "x":
			m.controller.StopMonitoring()
			m.statusMsg = "Monitoring stopped."
			return nil, true
		}
		return nil, false
	}

	switch msg.String() {
	case "r":
		m.loading = true
		return loadDevicesCmd(m.controller), true
	case "e", "d":
		item, ok := m.devices.SelectedItem().(deviceItem)
		if !ok {
			m.err = errors.New("please select a device first")
			return nil, true
		}
		return toggleCmd(m.controller, item.DeviceID, msg.String() == "e"), true
	case "l":
		if m.showLogs {
			m.showLogs = false
			return nil, true
		}
		return loadLogsCmd(m.controller), true
	}
	return nil, false
}

func (m *Model) appendRow(ev model.UsageEvent) {
	m.rows = append(m.rows, table.Row{
		ev.Category.String(),
		ev.DeviceName,
		ev.ProcessName,
		strconv.Itoa(int(ev.PID)),
	})
	if len(m.rows) > maxRows {
		m.rows = m.rows[len(m.rows)-maxRows:]
	}
	m.table.SetRows(m.rows)
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	runningStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	stoppedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	errStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	titles := []string{"Real-Time Monitoring", "USB Device Control"}
	tabs := make([]string, len(titles))
	for i, title := range titles {
		if tab(i) == m.active {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = inactiveTabStyle.Render(title)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if m.active == tabMonitoring {
		m.viewMonitoring(&b)
	} else {
		m.viewDevices(&b)
	}

	if m.err != nil {
		b.WriteString(errStyle.Render(describeErr(m.err)))
		b.WriteByte('\n')
	} else if m.statusMsg != "" {
		b.WriteString(m.statusMsg)
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) viewMonitoring(b *strings.Builder) {
	if m.controller.Monitoring() {
		b.WriteString(runningStyle.Render("● Monitoring"))
	} else {
		b.WriteString(stoppedStyle.Render("○ Stopped"))
	}
	fmt.Fprintf(b, "  microphones=%d cameras=%d events=%d\n",
		m.controller.KnownDevices(model.Microphone),
		m.controller.KnownDevices(model.Camera),
		len(m.rows))
	b.WriteString(m.table.View())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("s start • x stop • tab switch • q quit"))
	b.WriteByte('\n')
}

func (m *Model) viewDevices(b *strings.Builder) {
	switch {
	case m.showLogs:
		text := m.logs
		if strings.TrimSpace(text) == "" {
			text = "No logs available yet."
		}
		b.WriteString(panelStyle.Render(text))
	case m.loading:
		b.WriteString("Loading devices…")
	case len(m.devices.Items()) == 0:
		b.WriteString("No USB devices found.")
	default:
		b.WriteString(m.devices.View())
	}
	b.WriteByte('\n')

	help := "r refresh • e enable • d disable • l logs • tab switch • q quit"
	if !m.lastRefresh.IsZero() {
		help += fmt.Sprintf(" • last refresh %s", m.lastRefresh.Format(time.Kitchen))
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteByte('\n')
}

func describeErr(err error) string {
	switch {
	case errors.Is(err, control.ErrPermissionDenied):
		return "This operation requires administrator privileges."
	case errors.Is(err, control.ErrDeviceNotFound):
		return "Device not found. Press r to refresh the device list."
	}
	return fmt.Sprintf("Error: %v", err)
}

// deviceItem adapts model.DeviceRecord to the bubbles list item interface.
type deviceItem struct {
	model.DeviceRecord
}

func (d deviceItem) Title() string { return d.DisplayName }

func (d deviceItem) Description() string {
	return fmt.Sprintf("id=%s kind=%s", d.DeviceID, d.Kind)
}

func (d deviceItem) FilterValue() string { return d.DisplayName }

// UsageMsg carries one monitor event into the program.
type UsageMsg struct{ Event model.UsageEvent }

// DeviceChangedMsg signals a hotplug event; the device list is reloaded.
type DeviceChangedMsg struct{ Change model.DeviceChange }

type devicesLoadedMsg struct{ devices []model.DeviceRecord }

type toggledMsg struct {
	deviceID string
	enable   bool
}

type logsLoadedMsg struct{ text string }

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func loadDevicesCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		devs, err := ctrl.Enumerate(ctx)
		if err != nil {
			return errMsg{err}
		}
		return devicesLoadedMsg{devices: devs}
	}
}

func toggleCmd(ctrl Controller, deviceID string, enable bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := ctrl.Toggle(ctx, deviceID, enable); err != nil {
			return errMsg{err}
		}
		return toggledMsg{deviceID: deviceID, enable: enable}
	}
}

func loadLogsCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		text, err := ctrl.Logs(ctx)
		if err != nil {
			return errMsg{err}
		}
		return logsLoadedMsg{text: text}
	}
}
