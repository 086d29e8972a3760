package chronicle

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flowrpg/internal/modules/progression/dto"
	"flowrpg/internal/ui/theme"
)

// Port is the minimal interface this view needs from progression.
type Port interface {
	Chronicle(ctx context.Context, tail int) (dto.ChronicleOutput, error)
}

// LoadedMsg carries a freshly read chronicle.
type LoadedMsg struct {
	Out dto.ChronicleOutput
	Err error
}

// Model shows the full story log in a scrollable viewport.
type Model struct {
	port   Port
	out    dto.ChronicleOutput
	err    error
	vp     viewport.Model
	width  int
	height int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(0, 1)
	return Model{port: port, vp: vp}
}

// Reload reads the whole log again.
func (m Model) Reload() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return func() tea.Msg {
		out, err := m.port.Chronicle(context.Background(), 0)
		return LoadedMsg{Out: out, Err: err}
	}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width - 2
		m.vp.Height = msg.Height - 2
		m.vp.SetContent(m.render())

	case LoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.out = msg.Out
		}
		m.vp.SetContent(m.render())
		m.vp.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := theme.Title.Render("Chronicle") + "  " +
		theme.Muted.Render(fmt.Sprintf("%s · level %d · %d entries", m.out.BossName, m.out.Level, m.out.Total))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.vp.View())
}

func (m Model) render() string {
	if m.err != nil {
		return theme.Bad.Render("chronicle: " + m.err.Error())
	}
	if len(m.out.Entries) == 0 {
		return theme.Muted.Render("The chronicle is empty. Finish a block to write its first line.")
	}
	var sb strings.Builder
	for i, line := range m.out.Entries {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%4d ", i+1)))
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
