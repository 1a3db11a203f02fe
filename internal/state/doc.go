// Package state records what kbchat has observed about the remote service.
//
// # Overview
//
// Every status fetch, whether it came from the startup check, a poll tick or a
// manual refresh, ends up as a kb.Observation passed to Store.Record. The
// coordinator uses the store to answer "what did the last observation say"
// when an ingestion request fails and the optimistic Scraping mode has to be
// rolled back. The header reads it for the last-update time and the retry
// badge.
//
// # Core Types
//
// Store:
//   - Mutex-protected container for the latest observation
//   - Written from the coordinator's event loop, read from anywhere
//
// Snapshot:
//   - Copy of the store at a point in time
//   - Last: the latest observation, available or not
//   - LastGood: the latest available snapshot, kept across failures
//   - ConsecutiveFailures: reset by any available observation
//
// # Error Handling
//
// Unavailable observations never erase LastGood. They set LastError and bump
// ConsecutiveFailures; IsOffline reports two or more failures in a row so the
// header can switch from a transient warning to a "retrying" badge.
//
// Snapshot returns copies of progress and wraps LastError so callers cannot
// mutate stored state.
package state
