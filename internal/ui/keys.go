package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application. Letters are left
// to the chat input, so every action sits on a control or function key.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Workflow
	Send       key.Binding
	IngestSite key.Binding
	IngestURL  key.Binding
	Refresh    key.Binding

	// Views
	ToggleLogs key.Binding

	// Scrolling
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "Help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / back to chat"),
		),

		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Send"),
		),
		IngestSite: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Build knowledge base"),
		),
		IngestURL: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Add URL"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Refresh status"),
		),

		ToggleLogs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "Logs"),
		),

		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "Scroll down"),
		),
	}
}

// ShortHelp implements help.KeyMap for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.IngestSite, k.IngestURL, k.ToggleLogs, k.CycleTheme, k.Help}
}

// FullHelp implements help.KeyMap for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.IngestSite, k.IngestURL, k.Refresh},
		{k.ToggleLogs, k.PageUp, k.PageDown, k.Escape},
		{k.CycleTheme, k.Help, k.Quit},
	}
}

// applySurface enables or disables workflow bindings and relabels the
// ingestion key so the command bar mirrors what the coordinator permits.
func (k *keyMap) applySurface(chatEnabled, ingestEnabled bool, ingestLabel string) {
	k.Send.SetEnabled(chatEnabled)
	k.IngestSite.SetEnabled(ingestEnabled)
	k.IngestURL.SetEnabled(ingestEnabled)
	if ingestLabel != "" {
		k.IngestSite.SetHelp("ctrl+s", ingestLabel)
	}
}
