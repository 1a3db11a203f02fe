// Package ui provides the kbchat terminal interface built on Bubble Tea.
//
// # Architecture Overview
//
// Model hosts a session.Coordinator. Every coordinator call happens inside
// Update, so the Bubble Tea event loop is the single task queue the workflow
// runs on. Network work comes back from the coordinator as session.Task values;
// runTask turns each into a tea.Cmd whose result (a completionMsg) is applied
// back inside Update.
//
// The status poller runs on its own goroutine. Run wires its callback to
// tea.Program.Send, so poll results arrive as ObservationMsg and are
// reconciled on the loop like everything else.
//
// # Layout
//
//	header       kbchat · mode badge · API · pages · last update · trouble badge
//	command bar  enabled key bindings, current theme
//	status       spinner + status text, progress bar, inline validation
//	box          conversation transcript or client log
//	input        chat input, disabled unless the mode is Ready
//
// # Surface
//
// After every coordinator call, syncSurface applies session.Surface to the
// widgets: the chat input is focused or blurred, workflow key bindings are
// enabled or disabled, and the ingestion binding is relabeled. Disabled
// bindings drop out of the command bar and never match a key.
//
// # Components
//
//   - app.go: Model, Update/View, Run
//   - keys.go: key bindings (bubbles/key)
//   - chat.go: transcript rendering, markdown answers (glamour)
//   - header.go: header and command bar
//   - status.go: status line and progress bar
//   - logs.go: client log view (logtail)
//   - modal.go: single-URL prompt
//   - help.go: help overlay (bubbles/help)
//   - theme.go, style_helpers.go: lipgloss themes and background helpers
package ui
