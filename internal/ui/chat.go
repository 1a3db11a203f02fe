package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/kbchat/internal/session"
)

const (
	placeholderEnabled  = "Ask a question about the knowledge base..."
	placeholderDisabled = "Chat is unavailable until the knowledge base is ready"
	emptyTranscript     = "No messages yet. Build the knowledge base with ctrl+s, then ask away."
)

// newRenderer builds a markdown renderer wrapped to width. A nil renderer
// means answers are shown as plain text.
func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(maxInt(width-2, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

// refreshTranscript re-renders the transcript viewport. force drops cached
// markdown, needed after a resize or theme change.
func (m *Model) refreshTranscript(force bool) {
	if m.transcript.Width == 0 {
		return
	}
	if force {
		m.rendered = make(map[int]string)
	}

	msgs := m.coord.Messages()
	grew := len(msgs) != m.messageCount
	atBottom := m.transcript.AtBottom()
	m.messageCount = len(msgs)

	m.transcript.SetContent(m.renderTranscript(msgs))
	if grew || atBottom {
		m.transcript.GotoBottom()
	}
}

func (m *Model) renderTranscript(msgs []session.Message) string {
	styles := m.theme.Styles()
	width := m.transcript.Width

	if len(msgs) == 0 && m.pendingChats == 0 {
		return styles.MutedText.Render(emptyTranscript)
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		stamp := styles.FaintText.Render(msg.At.Format("15:04"))
		switch msg.Sender {
		case session.SenderUser:
			b.WriteString(styles.UserLabel.Render("You") + " " + stamp + "\n")
			b.WriteString(styles.Text.Width(width).Render(msg.Text))
		default:
			b.WriteString(styles.BotLabel.Render("Assistant") + " " + stamp + "\n")
			if msg.Failed {
				b.WriteString(styles.DangerText.Width(width).Render(msg.Text))
				continue
			}
			b.WriteString(m.renderAnswer(i, msg.Text, width))
		}
	}

	if m.pendingChats > 0 {
		if len(msgs) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.spinner.View() + " " + styles.MutedText.Render("Thinking..."))
	}
	return b.String()
}

// renderAnswer renders a bot message as markdown, caching the result.
func (m *Model) renderAnswer(idx int, text string, width int) string {
	if out, ok := m.rendered[idx]; ok {
		return out
	}
	out := m.safeRenderMarkdown(text)
	if out == "" {
		out = m.theme.Styles().Text.Width(width).Render(text)
	}
	m.rendered[idx] = out
	return out
}

// safeRenderMarkdown returns "" when no renderer is configured or rendering
// fails, so the caller falls back to plain text.
func (m *Model) safeRenderMarkdown(text string) (out string) {
	if m.renderer == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return ""
	}
	return strings.Trim(rendered, "\n")
}

// renderChat renders the transcript box and the input line.
func (m Model) renderChat() string {
	box := m.renderBox("Conversation", m.transcript.View(), m.width, m.contentHeight(), true)
	return box + "\n" + m.renderInput()
}

func (m Model) renderInput() string {
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.SurfaceAlt)).
		Width(m.width).
		Padding(0, 1)
	return style.Render(m.input.View())
}
