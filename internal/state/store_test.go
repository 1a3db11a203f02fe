package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/kbchat/internal/kb"
)

func TestStore_RecordAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Record(kb.Observed(kb.Snapshot{
		ScrapingInProgress: true,
		Progress:           &kb.Progress{PagesScraped: 4, TotalPages: 10},
	}))

	snap := s.Snapshot()
	if !snap.Observed || !snap.HasGood || !snap.LastGood.ScrapingInProgress {
		t.Fatalf("snapshot = %#v, want observed scraping snapshot", snap)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.LastGood.Progress.PagesScraped = 999
	snap2 := s.Snapshot()
	if snap2.LastGood.Progress.PagesScraped != 4 {
		t.Fatalf("Snapshot should clone progress; got %d want 4", snap2.LastGood.Progress.PagesScraped)
	}
}

func TestStore_UnavailableKeepsLastGood(t *testing.T) {
	var s Store

	s.Record(kb.Observed(kb.Snapshot{ChatbotReady: true}))

	origErr := errors.New("boom")
	s.Record(kb.Unavailable(origErr))

	snap := s.Snapshot()
	if !snap.HasGood || !snap.LastGood.ChatbotReady {
		t.Fatalf("last good changed on error: %#v", snap.LastGood)
	}
	if snap.Last.Available() {
		t.Fatalf("Last should be the unavailable observation")
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() || snap.Observed {
		t.Fatalf("fresh store = %#v, want zero state", snap)
	}

	s.Record(kb.Unavailable(errors.New("fail 1")))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure = %#v, want 1 failure, not offline", snap)
	}

	s.Record(kb.Unavailable(errors.New("fail 2")))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures = %#v, want offline", snap)
	}

	s.Record(kb.Observed(kb.Snapshot{}))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success = %#v, want reset", snap)
	}
}

func TestStore_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Store{now: func() time.Time { return fixed }}
	s.Record(kb.Observed(kb.Snapshot{}))
	if got := s.Snapshot().LastUpdated; !got.Equal(fixed) {
		t.Fatalf("LastUpdated = %v, want %v", got, fixed)
	}
}
