package logging

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/five82/kbchat/internal/logtail"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatalf("ParseLevel(chatty) returned nil error")
	}
}

func TestNew_WritesJSONReadableByLogtail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kbchat.log")

	logger, flush, err := New(path, "debug")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Named("poller").Info("status poll failed", zap.String("mode", "offline"))
	flush()

	entries, err := logtail.Read(path, 10)
	if err != nil {
		t.Fatalf("logtail.Read returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != "info" || e.Logger != "poller" || e.Message != "status poll failed" {
		t.Fatalf("entry = %#v", e)
	}
	if e.Fields["mode"] != "offline" {
		t.Fatalf("entry fields = %v, want mode=offline", e.Fields)
	}
	if e.Time.IsZero() {
		t.Fatalf("entry time not parsed from %q", e.Raw)
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	if _, _, err := New("", "info"); err == nil {
		t.Fatalf("New with empty path returned nil error")
	}
	if _, _, err := New(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatalf("New with bad level returned nil error")
	}
}
