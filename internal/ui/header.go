package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/kbchat/internal/kb"
)

// renderHeader renders the status bar: logo, mode badge, API, progress,
// last update and connection trouble.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	surface := m.coord.Surface()
	snap := m.coord.Store().Snapshot()

	parts := []string{
		bg.Render("kbchat", styles.Logo),
		styles.ModeStyle(surface.Mode).Render(strings.ToUpper(surface.Mode.String())),
	}

	if !compact && m.apiURL != "" {
		parts = append(parts,
			bg.Render("API", styles.FaintText)+bg.Space()+
				bg.Render(truncateMiddle(m.apiURL, 40), styles.MutedText))
	}

	if p := surface.Progress; p != nil {
		parts = append(parts,
			bg.Render("Pages:", styles.MutedText)+bg.Space()+
				bg.Render(p.String(), styles.InfoText))
	}

	if ts := formatTimestamp(snap.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if snap.IsOffline() {
		label := classifyConnectionError(snap.LastError)
		parts = append(parts,
			bg.Render(label, styles.DangerText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d failed checks", snap.ConsecutiveFailures), styles.WarningText.Bold(true)))
	} else if !snap.Observed {
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// formatTimestamp renders t with a coarse relative age.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	since := now.Sub(t)
	out := t.Format("15:04:05")

	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// classifyConnectionError maps a fetch failure to a short badge.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case kb.IsProtocol(err):
		return "BAD RESPONSE"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the enabled bindings.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	colon := bg.Sep(":")
	bindings := m.keys.ShortHelp()
	segments := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		segments = append(segments,
			bg.Render(h.Key, styles.AccentText)+colon+bg.Render(h.Desc, styles.MutedText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("theme", styles.FaintText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Padding(0, 1).
		Render(bg.Join(segments, "  "))
}
