package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// urlPrompt asks for a single page to ingest.
type urlPrompt struct {
	input     textinput.Model
	err       string
	submitted bool
}

func newURLPrompt(width int) *urlPrompt {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/docs/page"
	ti.CharLimit = 2048
	ti.Width = minInt(maxInt(width-16, 20), 70)
	ti.Focus()
	return &urlPrompt{input: ti}
}

// Value returns the entered URL.
func (p *urlPrompt) Value() string {
	return p.input.Value()
}

// reject reopens the prompt with an error under the field.
func (p *urlPrompt) reject(msg string) {
	p.err = msg
	p.submitted = false
}

func (p *urlPrompt) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			return p, nil, true
		case keyMsg.Type == tea.KeyEnter:
			p.submitted = true
			return p, nil, true
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

func (p *urlPrompt) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Ingest a single URL"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	if p.err != "" {
		b.WriteString(styles.DangerText.Render(p.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedText.Render("enter ingest  •  esc cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
