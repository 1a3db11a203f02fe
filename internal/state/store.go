package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/kbchat/internal/kb"
)

// Snapshot represents everything known about the remote service so far.
type Snapshot struct {
	Last                kb.Observation // most recent observation, zero before the first fetch
	LastGood            kb.Snapshot    // most recent available snapshot
	HasGood             bool
	Observed            bool // at least one observation recorded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the service has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store records observations. The coordinator writes from its event loop;
// headless commands and the header may read from other goroutines.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Record stores obs. Unavailable observations keep the last good snapshot and
// bump the failure counter.
func (s *Store) Record(obs kb.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	s.snapshot.Last = obs
	s.snapshot.Observed = true
	s.snapshot.LastUpdated = now()

	snap, ok := obs.Snapshot()
	if !ok {
		s.snapshot.LastError = obs.Err()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.LastGood = cloneSnapshot(snap)
	s.snapshot.HasGood = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.LastGood = cloneSnapshot(s.snapshot.LastGood)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneSnapshot(in kb.Snapshot) kb.Snapshot {
	out := in
	if in.Progress != nil {
		p := *in.Progress
		out.Progress = &p
	}
	return out
}
