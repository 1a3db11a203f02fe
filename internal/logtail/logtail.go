package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Entry is one line of the client log. Lines that are not JSON keep only Raw
// and Message.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  map[string]string
	Raw     string
}

// timeLayout matches zapcore.ISO8601TimeEncoder.
const timeLayout = "2006-01-02T15:04:05.000Z0700"

// reserved keys are lifted into Entry fields rather than Fields.
var reserved = map[string]struct{}{
	"ts": {}, "level": {}, "logger": {}, "msg": {}, "caller": {},
}

// Read returns at most maxLines entries from the end of the file at path.
// A missing file yields no entries and no error.
func Read(path string, maxLines int) ([]Entry, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	entries := make([]Entry, count)
	start := 0
	if count == maxLines {
		start = idx
	}
	for i := 0; i < count; i++ {
		entries[i] = Parse(ring[(start+i)%maxLines])
	}
	return entries, nil
}

// Parse decodes one zap JSON line.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return entry
	}

	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
	}
	if lvl, ok := raw["level"].(string); ok {
		entry.Level = strings.ToLower(lvl)
	}
	if name, ok := raw["logger"].(string); ok {
		entry.Logger = name
	}
	if ts, ok := raw["ts"].(string); ok {
		if parsed, err := time.Parse(timeLayout, ts); err == nil {
			entry.Time = parsed
		} else if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Time = parsed
		}
	}

	for key, value := range raw {
		if _, skip := reserved[key]; skip {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]string)
		}
		entry.Fields[key] = fmt.Sprint(value)
	}
	return entry
}

// Format renders an entry as a single display line:
// "15:04:05 INFO  component message key=value ...".
func Format(e Entry) string {
	if e.Level == "" && e.Time.IsZero() {
		return e.Raw
	}

	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	if e.Logger != "" {
		b.WriteString(e.Logger)
		b.WriteByte(' ')
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Fields[k])
	}
	return b.String()
}
