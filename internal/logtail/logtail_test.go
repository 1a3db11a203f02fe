package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kbchat.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("Line %d", i))
	}
	path := writeLog(t, lines)

	tests := []struct {
		name      string
		maxLines  int
		wantFirst string
		wantCount int
	}{
		{"zero returns nothing", 0, "", 0},
		{"negative returns nothing", -1, "", 0},
		{"partial keeps the tail", 5, "Line 6", 5},
		{"exactly all", 10, "Line 1", 10},
		{"more than exists", 20, "Line 1", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("Read returned %d entries, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if got[0].Raw != tt.wantFirst {
				t.Fatalf("first entry = %q, want %q", got[0].Raw, tt.wantFirst)
			}
			if got[len(got)-1].Raw != "Line 10" {
				t.Fatalf("last entry = %q, want Line 10", got[len(got)-1].Raw)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("Read = %v, want nil", got)
	}
}

func TestRead_SkipsBlankLines(t *testing.T) {
	path := writeLog(t, []string{"a", "", "  ", "b"})
	got, err := Read(path, 10)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 2 || got[0].Raw != "a" || got[1].Raw != "b" {
		t.Fatalf("Read = %#v, want a and b", got)
	}
}

func TestParse_ZapJSON(t *testing.T) {
	line := `{"level":"warn","ts":"2025-06-01T10:11:12.345Z","logger":"poller","msg":"status poll failed","error":"connection refused","attempt":3}`
	e := Parse(line)
	if e.Level != "warn" || e.Logger != "poller" || e.Message != "status poll failed" {
		t.Fatalf("Parse = %#v", e)
	}
	if e.Time.IsZero() || e.Time.UTC().Second() != 12 {
		t.Fatalf("Parse time = %v, want 10:11:12", e.Time)
	}
	if e.Fields["error"] != "connection refused" || e.Fields["attempt"] != "3" {
		t.Fatalf("Parse fields = %v", e.Fields)
	}
	if _, ok := e.Fields["msg"]; ok {
		t.Fatalf("reserved key leaked into fields: %v", e.Fields)
	}

	formatted := Format(e)
	if !strings.Contains(formatted, "WARN") || !strings.Contains(formatted, "poller status poll failed") {
		t.Fatalf("Format = %q", formatted)
	}
	if !strings.HasSuffix(formatted, "attempt=3 error=connection refused") {
		t.Fatalf("Format fields not sorted: %q", formatted)
	}
}

func TestParse_PlainTextPassesThrough(t *testing.T) {
	e := Parse("panic: something odd")
	if e.Message != "panic: something odd" || e.Level != "" {
		t.Fatalf("Parse = %#v", e)
	}
	if Format(e) != "panic: something odd" {
		t.Fatalf("Format = %q", Format(e))
	}
}
