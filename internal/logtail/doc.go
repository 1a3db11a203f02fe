// Package logtail reads the tail of the kbchat client log for display.
//
// # Overview
//
// kbchat owns the terminal while the TUI runs, so its zap logger writes JSON
// lines to a file instead of stderr. The TUI log view (ctrl+l) calls Read on
// every tick to show the most recent entries.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each non-blank line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. If total < maxLines, return the first 'count' entries
//	4. Otherwise return the buffer starting at the current index (oldest line)
//
// Memory stays O(maxLines) regardless of file size, and a missing file is
// treated as an empty log.
//
// # Parsing
//
// Parse decodes zap's JSON encoding (ts, level, logger, msg plus arbitrary
// fields). Lines that are not JSON, such as a panic trace, are kept verbatim.
// Format flattens an Entry into "15:04:05 LEVEL logger message k=v ..." with
// fields sorted by key so repeated renders are stable.
package logtail
