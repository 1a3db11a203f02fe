package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/five82/kbchat/internal/kb"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"trimmed", "  hello  ", 10, "hello"},
		{"ellipsis", "hello world", 8, "hello..."},
		{"tiny_limit", "hello", 2, "he"},
		{"no_limit", "hello", 0, "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncate(tc.in, tc.limit); got != tc.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	got := truncateMiddle("http://knowledge-base.internal:8000/api", 16)
	if want := "http:…l:8000/api"; got != want {
		t.Fatalf("truncateMiddle = %q, want %q", got, want)
	}
	if got := truncateMiddle("short", 16); got != "short" {
		t.Fatalf("truncateMiddle short = %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"now", now.Add(-10 * time.Second), "11:59:50 (now)"},
		{"minutes", now.Add(-5 * time.Minute), "11:55:00 (5m ago)"},
		{"hours", now.Add(-3 * time.Hour), "09:00:00 (3h ago)"},
		{"old", now.Add(-48 * time.Hour), "12:00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatTimestamp(tc.at, now); got != tc.want {
				t.Fatalf("formatTimestamp = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyConnectionError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"refused", errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), "OFFLINE"},
		{"dns", errors.New("dial tcp: lookup kb.invalid: no such host"), "HOST NOT FOUND"},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), "TIMEOUT"},
		{"protocol", &kb.Error{Kind: kb.KindProtocol, Op: "GET /status", Detail: "bad json"}, "BAD RESPONSE"},
		{"other", errors.New("boom"), "ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyConnectionError(tc.err); got != tc.want {
				t.Fatalf("classifyConnectionError = %q, want %q", got, tc.want)
			}
		})
	}
}
