// Package app provides the orchestration layer for kbchat.
//
// # Overview
//
// This package wires together configuration, logging, the knowledge-base
// client, the status poller and a session coordinator. It is the composition
// root for both the TUI and the headless subcommands.
//
// # Architecture
//
// Every entry point runs the same bootstrap:
//
//  1. Load ~/.config/kbchat/config.toml and apply flag overrides
//  2. Open the JSON log file through internal/logging
//  3. Build the kb.Client with the configured timeouts
//  4. Create the state.Store and a stopped Poller
//
// Run then hands a session.Coordinator to ui.Run, which hosts it inside the
// Bubble Tea event loop. Status, Scrape and Ask host it on the calling
// goroutine instead.
//
// # Components
//
//   - app.go: bootstrap, Run and the headless entry points
//   - headless.go: event loop for the status, scrape and ask subcommands
//   - poller.go: at most one recurring status fetch, started and stopped by
//     the coordinator
//
// # Data Flow
//
//	┌──────────────┐
//	│ bootstrap()  │
//	└──────┬───────┘
//	       ├─────> config.Load()     Read config, apply overrides
//	       ├─────> logging.New()     JSON log file
//	       ├─────> kb.NewClient()    HTTP client
//	       └─────> NewPoller()       Stopped until ingestion starts
//
//	Poller goroutine (only while a job runs):
//	┌─────────────────────────────────────────┐
//	│ tick ─> FetchOnce() ─> Observation      │
//	│          └─> deliver()                  │
//	│               ├─> TUI: program.Send     │
//	│               └─> headless: obs channel │
//	└─────────────────────────────────────────┘
//	Event loop: Coordinator.Apply(obs) ─> Surface
//
// # Polling Behavior
//
// The poller does not run at startup. One status fetch establishes the
// initial mode; the poller starts when ingestion is requested or a running
// job is observed and stops once the knowledge base reports ready. A failed
// tick yields kb.Unavailable and polling continues.
//
// # Error Handling
//
// Fatal errors (returned from Run, Status, Scrape and Ask):
//   - Configuration file invalid
//   - Log file cannot be created
//   - API URL cannot be parsed
//
// Headless commands also return an error when the service is unreachable,
// the request was rejected, or an ingestion ended without a ready knowledge
// base, so scripts can rely on the exit code.
package app
