package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LayoutCompactWidth is the width below which the header drops the API URL.
const LayoutCompactWidth = 100

// DefaultUIInterval drives the header clock and the log view refresh.
const DefaultUIInterval = time.Second

// logReadLimit is how many log lines the log view keeps.
const logReadLimit = 500

// contentHeight returns the height of the main box: everything except the
// header, command bar, status lines and the bottom input or log status row.
func (m Model) contentHeight() int {
	return maxInt(m.height-2-m.statusLines()-1, 3)
}

// renderBox draws a rounded box with title set into the top border.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	color := m.theme.Border
	if focused {
		color = m.theme.BorderFocus
	}
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color))

	inner := maxInt(width-2, 1)
	label := " " + truncate(title, maxInt(inner-4, 1)) + " "
	fill := maxInt(inner-1-lipgloss.Width(label), 0)
	top := borderStyle.Render("╭─") +
		m.theme.Styles().AccentText.Bold(true).Render(label) +
		borderStyle.Render(strings.Repeat("─", fill)+"╮")

	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), false, true, true, true).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1).
		Width(inner).
		Height(maxInt(height-2, 1)).
		MaxHeight(maxInt(height-1, 2)).
		Render(content)

	return top + "\n" + body
}
