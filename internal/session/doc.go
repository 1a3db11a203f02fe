// Package session coordinates the kbchat workflow: trigger ingestion, watch
// it progress, then gate chat on the result.
//
// # Overview
//
// A Coordinator owns the operational Mode (Offline, Scraping, Ready), the
// derived Surface the front end renders, and the append-only Transcript. It
// is confined to one goroutine: the Bubble Tea Update loop in the TUI, or the
// driver loop of a headless command. It holds no locks.
//
// # Tasks and Completions
//
// Operations that need the network return a Task instead of blocking. The
// owner runs the Task elsewhere (a tea.Cmd, or a goroutine feeding a channel)
// and applies the returned Completion back on the loop. Tasks capture only
// the service client and their own arguments, so they never race with the
// coordinator's state.
//
// # Mode Derivation
//
// Reconcile and Describe are pure functions of a kb.Observation. Scraping
// dominates when the service reports both scraping and ready. Unavailable
// maps to Offline with the error in the status line.
//
// The only mode change not driven by an observation is the optimistic
// Scraping entered by RequestIngestion, which keeps the ingestion control
// disabled while the request is in flight. If the request fails, the surface
// is rebuilt from the last recorded observation.
//
// # Polling
//
// A successful ingestion request starts the Poller; entering Ready stops it.
// The poller's callback (Options.Deliver) runs on the poller goroutine and
// must only forward the observation to the loop, where Apply is called.
package session
