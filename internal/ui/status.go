package ui

import (
	"strings"

	"github.com/five82/kbchat/internal/session"
)

// statusLines returns how many rows renderStatus occupies.
func (m Model) statusLines() int {
	s := m.coord.Surface()
	n := 1
	if s.Progress != nil {
		n++
	}
	if s.Inline != "" {
		n++
	}
	return n
}

// renderStatus renders the status text, progress bar and inline validation.
func (m Model) renderStatus() string {
	s := m.coord.Surface()
	styles := m.theme.Styles()

	textStyle := styles.Text
	if s.StatusIsError {
		textStyle = styles.DangerText
	}

	prefix := "  "
	if s.Mode == session.Scraping {
		prefix = m.spinner.View() + " "
	}

	lines := []string{prefix + textStyle.Render(truncate(s.Status, maxInt(m.width-4, 10)))}

	if p := s.Progress; p != nil {
		lines = append(lines,
			"  "+m.progress.ViewAs(p.Fraction())+" "+styles.MutedText.Render(p.String()+" pages"))
	}

	if s.Inline != "" {
		lines = append(lines, "  "+styles.WarningText.Render("! "+s.Inline))
	}

	return strings.Join(lines, "\n")
}
