package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flowrpg/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc or answers "n".
type PaletteCancelMsg struct{}

// PaletteConfirmedMsg is emitted when the user answers "y" to Ask.
type PaletteConfirmedMsg struct{ Input string }

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// hints must stay in sync with progression's TUIHandler.Command.
var paletteHints = []string{
	"block:deep",
	"block:mini",
	"reward:small",
	"reward:big",
	"boss:new",
	"difficulty:cycle",
	"times:forget",
	"reset",
}

// Palette is a command-palette overlay backed by bubbles/textinput. It also
// doubles as a y/n prompt for destructive commands.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int

	// pending holds the command awaiting a y/n answer.
	pending string
	prompt  string
}

// NewPalette creates an inactive Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 64
	return Palette{input: ti}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Confirming reports whether the palette is waiting for a y/n answer.
func (p Palette) Confirming() bool { return p.visible && p.pending != "" }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.pending = ""
	p.prompt = ""
	p.input.SetValue("")
	return p.input.Focus()
}

// Ask shows prompt and waits for y/n before emitting PaletteConfirmedMsg
// carrying command.
func (p *Palette) Ask(command, prompt string) {
	p.visible = true
	p.pending = command
	p.prompt = prompt
	p.input.Blur()
}

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)
	if p.pending != "" {
		if !isKey {
			return p, nil
		}
		command := p.pending
		switch strings.ToLower(keyMsg.String()) {
		case "y":
			p.close()
			return p, func() tea.Msg { return PaletteConfirmedMsg{Input: command} }
		case "n", "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		}
		return p, nil
	}

	if isKey {
		switch keyMsg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if s := Suggest(strings.ToLower(p.input.Value()), 1); len(s) == 1 {
				p.input.SetValue(s[0])
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}

	var sb strings.Builder
	if p.pending != "" {
		sb.WriteString(theme.Bad.Render(p.prompt) + "\n\n")
		sb.WriteString(hintStyle.Render("y: confirm  n/esc: cancel"))
	} else {
		sb.WriteString(theme.Title.Render("Command Palette") + "\n")
		sb.WriteString(": " + p.input.View() + "\n")
		if matching := Suggest(strings.ToLower(p.input.Value()), 5); len(matching) > 0 {
			sb.WriteString("\n")
			for _, h := range matching {
				sb.WriteString(hintStyle.Render("  "+h) + "\n")
			}
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.visible = false
	p.pending = ""
	p.prompt = ""
	p.input.Blur()
}

// Suggest returns up to limit palette commands starting with prefix.
func Suggest(prefix string, limit int) []string {
	var out []string
	for _, h := range paletteHints {
		if prefix == "" || strings.HasPrefix(h, prefix) {
			out = append(out, h)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
