package focus

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"flowrpg/internal/modules/progression/dto"
	"flowrpg/internal/ui/components"
	"flowrpg/internal/ui/theme"
)

// Model renders the timer, level and boss panes for the Focus tab. It owns
// no state beyond the last snapshot handed to it by the parent model.
type Model struct {
	snap   dto.Snapshot
	loaded bool
	exp    progress.Model
	hp     progress.Model
	width  int
	height int
}

func New() Model {
	return Model{
		exp: progress.New(progress.WithSolidFill(string(theme.Lavender)), progress.WithoutPercentage()),
		hp:  progress.New(progress.WithSolidFill(string(theme.Red)), progress.WithoutPercentage()),
	}
}

// SetSnapshot replaces the rendered snapshot.
func (m *Model) SetSnapshot(s dto.Snapshot) {
	m.snap = s
	m.loaded = true
}

func (m Model) Snapshot() dto.Snapshot { return m.snap }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if sz, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = sz.Width
		m.height = sz.Height
		barW := sz.Width/2 - 8
		if barW < 10 {
			barW = 10
		}
		m.exp.Width = barW
		m.hp.Width = barW
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("loading progress…"))
	}

	half := m.width/2 - 2
	if half < 24 {
		half = 24
	}
	left := lipgloss.JoinVertical(lipgloss.Left, m.renderTimer(half), m.renderBalance(half))
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderHero(half), m.renderBoss(half))
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, top, m.renderStory(m.width-2))
}

func (m Model) renderTimer(w int) string {
	s := m.snap
	pane := theme.PaneFocus
	mode := "FOCUS"
	if s.Mode == "break" {
		pane = theme.PaneBreak
		mode = "BREAK"
	}
	state := theme.Muted.Render("paused")
	if s.Running {
		state = theme.Good.Render("● running")
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(mode) + "  " + state + "\n\n")
	sb.WriteString(theme.Hot.Render(components.Clock(s.Elapsed)) + "\n\n")
	if s.Mode == "focus" {
		sb.WriteString(theme.Muted.Render("auto: " + autoLabel(s.AutoRegistration)))
	} else {
		sb.WriteString(theme.Muted.Render("space: start/pause  m: back to focus"))
	}
	return pane.Width(w).Render(sb.String())
}

func (m Model) renderBalance(w int) string {
	s := m.snap
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Balance") + "  " + theme.Muted.Render(s.DifficultyLabel) + "\n\n")
	label := theme.Tone(s.BalanceTone).Render(s.BalanceLabel)
	if s.Buffed {
		label += "  " + theme.Good.Render("buffed")
	}
	sb.WriteString(label + "\n")
	sb.WriteString(fmt.Sprintf("session  focus %s  break %s\n",
		components.Clock(s.SessionFocusSeconds), components.Clock(s.SessionBreakSeconds)))
	sb.WriteString(fmt.Sprintf("total    focus %s  break %s",
		components.Clock(s.TotalFocusSeconds), components.Clock(s.TotalBreakSeconds)))
	return theme.Pane.Width(w).Render(sb.String())
}

func (m Model) renderHero(w int) string {
	s := m.snap
	ratio := 0.0
	if s.LevelSize > 0 {
		ratio = float64(s.ExperienceInLevel) / float64(s.LevelSize)
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("Level %d", s.Level)) + "\n\n")
	sb.WriteString(m.exp.ViewAs(ratio) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("EXP %d/%d  total %s",
		s.ExperienceInLevel, s.LevelSize, humanize.Comma(int64(s.ExperienceTotal)))) + "\n")
	sb.WriteString(fmt.Sprintf("tokens %d  spent %d", s.TokensAvailable, s.TokensSpent))
	return theme.Pane.Width(w).Render(sb.String())
}

func (m Model) renderBoss(w int) string {
	s := m.snap
	ratio := 0.0
	if s.BossHP > 0 {
		ratio = float64(s.HPRemaining) / float64(s.BossHP)
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.BossName) + "\n\n")
	sb.WriteString(m.hp.ViewAs(ratio) + "\n")
	hp := fmt.Sprintf("HP %d/%d", s.HPRemaining, s.BossHP)
	if s.HPRemaining == 0 {
		hp = theme.Hot.Render("defeated") + theme.Muted.Render("  :boss:new to summon the next")
	}
	sb.WriteString(hp + "\n")
	sb.WriteString(theme.Muted.Render("damage dealt " + humanize.Comma(int64(s.DamageTotal))))
	return theme.Pane.Width(w).Render(sb.String())
}

func (m Model) renderStory(w int) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Story") + "\n")
	if len(m.snap.StoryTail) == 0 {
		sb.WriteString(theme.Muted.Render("nothing has happened yet"))
	}
	for i, line := range m.snap.StoryTail {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("· " + line)
	}
	return theme.Pane.Width(w).Render(sb.String())
}

func autoLabel(state string) string {
	switch state {
	case "brief":
		return "mini block registered"
	case "deep":
		return "deep block registered"
	default:
		return "waiting for 10 min"
	}
}
