package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flowrpg/internal/modules/progression/dto"
	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/ui/components"
	"flowrpg/internal/ui/theme"
	chronicleview "flowrpg/internal/ui/views/chronicle"
	focusview "flowrpg/internal/ui/views/focus"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// ProgressionPort is the slice of the progression TUI handler the host needs.
type ProgressionPort interface {
	Snapshot(ctx context.Context) (dto.Snapshot, error)
	Toggle(ctx context.Context) (dto.Result, error)
	SwitchMode(ctx context.Context) (dto.Result, error)
	Tick(ctx context.Context) (dto.Result, error)
	Command(ctx context.Context, name string) (dto.Result, error)
	Chronicle(ctx context.Context, tail int) (dto.ChronicleOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabFocus tabID = iota
	tabChronicle
	tabCount
)

var tabLabels = [tabCount]string{"Focus", "Chronicle"}

// ─── async messages ──────────────────────────────────────────────────────────

type tickMsg time.Time

type snapshotLoadedMsg struct {
	snap dto.Snapshot
	err  error
}

// resultMsg carries the outcome of any mutating call. origin names the call
// for the status bar.
type resultMsg struct {
	origin string
	result dto.Result
	err    error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Toggle  key.Binding
	Switch  key.Binding
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause")),
		Switch:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "focus/break")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Switch, k.Tab, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Switch},
		{k.Tab, k.Palette},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It drives the one-second tick, routes
// keys and palette commands to the progression port, and surfaces events in
// the status bar.
type Model struct {
	port ProgressionPort

	focusView     focusview.Model
	chronicleView chronicleview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	warning   bool
	width     int
	height    int
}

func NewModel(port ProgressionPort) Model {
	return Model{
		port:          port,
		focusView:     focusview.New(),
		chronicleView: chronicleview.New(port),
		activeTab:     tabFocus,
		keys:          defaultKeys(),
		help:          help.New(),
		palette:       components.NewPalette(),
		status:        "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSnapshotCmd(), m.chronicleView.Init(), tickEvery())
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The timer keeps running while the palette or help is open.
	if _, ok := msg.(tickMsg); ok {
		return m, tea.Batch(m.callCmd("tick", m.port.Tick), tickEvery())
	}

	// The palette intercepts all keys while open.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 64))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.setWarning("progress: " + msg.err.Error())
			return m, nil
		}
		m.focusView.SetSnapshot(msg.snap)
		return m, nil

	case resultMsg:
		return m.applyResult(msg)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteConfirmedMsg:
		return m, m.commandCmd(msg.Input)

	case components.PaletteCancelMsg:
		m.setStatus("ready")
		return m, nil

	case chronicleview.LoadedMsg:
		var cmd tea.Cmd
		m.chronicleView, cmd = m.chronicleView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.activeTab = (m.activeTab + 1) % tabCount
			if m.activeTab == tabChronicle {
				return m, m.chronicleView.Reload()
			}
			return m, nil
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Toggle):
			return m, m.callCmd("start/pause", m.port.Toggle)
		case key.Matches(msg, m.keys.Switch):
			return m, m.callCmd("switch mode", m.port.SwitchMode)
		}
	}

	// Scrolling and other leftovers go to the active tab.
	var cmd tea.Cmd
	switch m.activeTab {
	case tabFocus:
		m.focusView, cmd = m.focusView.Update(msg)
	case tabChronicle:
		m.chronicleView, cmd = m.chronicleView.Update(msg)
	}
	return m, cmd
}

func (m Model) applyResult(msg resultMsg) (tea.Model, tea.Cmd) {
	persistFailed := errors.Is(msg.err, apperrors.ErrPersistenceWriteFailed)
	if msg.err != nil && !persistFailed {
		m.setWarning(msg.origin + ": " + msg.err.Error())
		return m, nil
	}
	m.focusView.SetSnapshot(msg.result.Snapshot)

	if note := headline(msg.result.Events); note != "" {
		m.setStatus(note)
	} else if msg.origin != "tick" {
		m.setStatus(msg.origin + " ok")
	}
	if persistFailed {
		m.setWarning("progress not saved: " + msg.err.Error())
	}

	if len(msg.result.Events) > 0 && m.activeTab == tabChronicle {
		return m, m.chronicleView.Reload()
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.FullHelpView(m.keys.FullHelp()))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabChronicle:
		content = m.chronicleView.View()
	default:
		content = m.focusView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "flowrpg  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.warning {
		left = theme.Warn.Render("! " + m.status)
	}
	right := m.help.ShortHelpView(m.keys.ShortHelp())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(input)
	switch name {
	case "":
		return m, nil
	case "reset":
		m.palette.Ask(name, "Reset all progress, bosses and statistics?")
		return m, nil
	}
	if !isCommand(name) {
		m.setWarning("unknown command: " + name)
		return m, nil
	}
	return m, m.commandCmd(name)
}

func isCommand(name string) bool {
	s := components.Suggest(name, 1)
	return len(s) == 1 && s[0] == name
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) setStatus(s string) {
	m.status = s
	m.warning = false
}

func (m *Model) setWarning(s string) {
	m.status = s
	m.warning = true
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.focusView, _ = m.focusView.Update(sz)
	m.chronicleView, _ = m.chronicleView.Update(sz)
}

// headline picks the event message for the status bar: the last notable
// one (achievement, level-up, defeat, budget), else the first event.
func headline(events []dto.Event) string {
	best := ""
	for _, e := range events {
		switch e.Kind {
		case "achievement_unlocked", "level_up", "boss_defeated", "break_budget_exhausted":
			best = e.Message
		default:
			if best == "" {
				best = e.Message
			}
		}
	}
	return best
}

// ─── async commands ──────────────────────────────────────────────────────────

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadSnapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.port.Snapshot(context.Background())
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}

func (m Model) callCmd(origin string, call func(context.Context) (dto.Result, error)) tea.Cmd {
	return func() tea.Msg {
		res, err := call(context.Background())
		return resultMsg{origin: origin, result: res, err: err}
	}
}

func (m Model) commandCmd(name string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.port.Command(context.Background(), name)
		return resultMsg{origin: name, result: res, err: err}
	}
}
