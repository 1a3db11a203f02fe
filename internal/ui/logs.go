package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/kbchat/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	entries  []logtail.Entry
	err      error
	follow   bool
	dirty    bool // content changed since last render
	lastRead time.Time
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// readLogsCmd tails the client log off the event loop.
func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Read(path, logReadLimit)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logState.entries = msg.entries
	m.logState.err = msg.err
	m.logState.lastRead = time.Now()
	m.logState.dirty = true
	m.updateLogViewport()
}

// updateLogViewport sizes the log viewport and re-renders it when dirty.
func (m *Model) updateLogViewport() {
	if m.width == 0 {
		return
	}
	width := maxInt(m.width-4, 10)
	height := maxInt(m.contentHeight()-2, 1)

	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	box := m.renderBox("Client log", m.logViewport.View(), m.width, m.contentHeight(), true)
	return box + "\n" + m.renderLogStatus()
}

func (m Model) renderLogStatus() string {
	styles := m.theme.Styles()

	parts := []string{styles.MutedText.Render(truncateMiddle(m.logPath, 50))}
	parts = append(parts, styles.Text.Render(fmt.Sprintf("%d lines", len(m.logState.entries))))
	if m.logState.follow {
		parts = append(parts, styles.SuccessText.Render("following"))
	} else {
		parts = append(parts, styles.WarningText.Render("paused"))
	}
	if m.logState.err != nil {
		parts = append(parts, styles.DangerText.Render(truncate(m.logState.err.Error(), 60)))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.SurfaceAlt)).
		Width(m.width).
		Padding(0, 1).
		Render(strings.Join(parts, "  "))
}

func (m *Model) renderLogContent() string {
	styles := m.theme.Styles()

	if len(m.logState.entries) == 0 {
		return styles.MutedText.Render("No log entries")
	}

	var b strings.Builder
	for i, e := range m.logState.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("%4d │ ", i+1)))
		b.WriteString(m.colorizeEntry(e, styles))
	}
	return b.String()
}

// colorizeEntry styles the pieces of a parsed entry.
func (m *Model) colorizeEntry(e logtail.Entry, styles Styles) string {
	if e.Level == "" && e.Time.IsZero() {
		return styles.Text.Render(e.Raw)
	}

	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	}
	level := strings.ToUpper(e.Level)
	parts = append(parts, getLevelStyle(level, styles).Bold(true).Render(fmt.Sprintf("%-5s", level)))
	if e.Logger != "" {
		parts = append(parts, styles.AccentText.Render(e.Logger))
	}
	parts = append(parts, styles.Text.Render(e.Message))

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, styles.MutedText.Render(k+"=")+styles.Text.Render(e.Fields[k]))
	}
	return strings.Join(parts, " ")
}

// getLevelStyle returns the style for a log level.
func getLevelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}
