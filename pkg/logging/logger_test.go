package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("Invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestJSONLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("snapshot published", SnapshotID("abc"), Count("entities", 42))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["level"] != "INFO" || e["msg"] != "snapshot published" {
		t.Errorf("Unexpected entry: %v", e)
	}
	fields, _ := e["fields"].(map[string]any)
	if fields["snapshot_id"] != "abc" {
		t.Errorf("Missing snapshot_id field: %v", fields)
	}
	if fields["entities"] != float64(42) {
		t.Errorf("Missing entities count: %v", fields)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	if got := len(decodeLines(t, &buf)); got != 2 {
		t.Errorf("Expected 2 entries, got %d", got)
	}

	logger.SetLevel(DebugLevel)
	logger.Debug("now visible")
	if got := len(decodeLines(t, &buf)); got != 3 {
		t.Errorf("Expected 3 entries after SetLevel, got %d", got)
	}
}

func TestWithPresetsFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, InfoLevel)
	child := base.With(Component("api"))

	child.Info("request handled", RequestID("r1"))

	entries := decodeLines(t, &buf)
	fields, _ := entries[0]["fields"].(map[string]any)
	if fields["component"] != "api" || fields["request_id"] != "r1" {
		t.Errorf("Preset fields missing: %v", fields)
	}
}

func TestErrorField(t *testing.T) {
	if f := Error(errors.New("boom")); f.Value != "boom" {
		t.Errorf("Error field = %v", f.Value)
	}
	if f := Error(nil); f.Value != nil {
		t.Errorf("Nil error field = %v", f.Value)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"warn":  WarnLevel,
		"ERROR": ErrorLevel,
		"bogus": InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTimedOperationEnd(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "feed refresh", String("source", "file:feed.json"))
	timer.End()

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["level"] != "INFO" || e["msg"] != "feed refresh" {
		t.Errorf("Unexpected entry: %v", e)
	}
	fields, _ := e["fields"].(map[string]any)
	if fields["source"] != "file:feed.json" {
		t.Errorf("Missing source field: %v", fields)
	}
	if _, ok := fields["latency_ms"].(float64); !ok {
		t.Errorf("Missing latency_ms field: %v", fields)
	}
}

func TestTimedOperationEndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "feed refresh")
	timer.EndError(errors.New("network down"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["level"] != "ERROR" {
		t.Errorf("Expected ERROR level, got %v", e["level"])
	}
	fields, _ := e["fields"].(map[string]any)
	if fields["error"] != "network down" {
		t.Errorf("Missing error field: %v", fields)
	}
	if _, ok := fields["latency_ms"].(float64); !ok {
		t.Errorf("Missing latency_ms field: %v", fields)
	}
}
