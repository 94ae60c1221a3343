package recorder

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

var fixedTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestRecorder(t *testing.T) (*Recorder, string) {
	t.Helper()
	dir := t.TempDir()
	r := New(dir)
	r.now = func() time.Time { return fixedTime }
	return r, dir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRecordUsage(t *testing.T) {
	r, dir := newTestRecorder(t)

	cached := 80
	r.RecordUsage(UsageRecord{
		Provider:          "http://upstream.test/v1",
		RequestedModel:    "claude-sonnet-4",
		ConcreteModel:     "test-model",
		InputTokens:       100,
		OutputTokens:      20,
		CachedInputTokens: &cached,
		Streaming:         true,
	})
	r.RecordUsage(UsageRecord{Provider: "p", RequestedModel: "m", ConcreteModel: "m"})

	lines := readLines(t, filepath.Join(dir, "token_usage", "2026-03-14.jsonl"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var rec UsageRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line not JSON: %v", err)
	}
	if rec.Timestamp != fixedTime.Format(time.RFC3339) {
		t.Errorf("timestamp = %q", rec.Timestamp)
	}
	if rec.RequestedModel != "claude-sonnet-4" || rec.ConcreteModel != "test-model" {
		t.Errorf("models = %q/%q", rec.RequestedModel, rec.ConcreteModel)
	}
	if rec.InputTokens != 100 || rec.OutputTokens != 20 || !rec.Streaming {
		t.Errorf("record = %+v", rec)
	}
	if rec.CachedInputTokens == nil || *rec.CachedInputTokens != 80 {
		t.Errorf("cached tokens = %v", rec.CachedInputTokens)
	}

	// Zero cached tokens must be omitted entirely.
	if strings.Contains(lines[1], "cached_input_tokens") {
		t.Errorf("second line carries cached tokens: %s", lines[1])
	}
}

func TestRecordError(t *testing.T) {
	r, dir := newTestRecorder(t)

	r.RecordError(anthropic.NewAPIError(500, "upstream exploded"), "msg_1", "p", "claude-sonnet-4", false)

	lines := readLines(t, filepath.Join(dir, "error_logs", "2026-03-14.jsonl"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}

	var rec ErrorRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line not JSON: %v", err)
	}
	if rec.RequestID != "msg_1" || rec.ModelName != "claude-sonnet-4" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Error.Status != 500 || rec.Error.Type != anthropic.ErrTypeAPI {
		t.Errorf("detail = %+v", rec.Error)
	}
	if !strings.Contains(rec.Error.Message, "upstream exploded") {
		t.Errorf("message = %q", rec.Error.Message)
	}
}

func TestRecordError_UserFaultStatusesSkipped(t *testing.T) {
	r, dir := newTestRecorder(t)

	for _, status := range []int{401, 402, 404, 429} {
		r.RecordError(anthropic.NewAPIError(status, "client problem"), "msg_1", "p", "m", false)
	}

	if _, err := os.Stat(filepath.Join(dir, "error_logs")); !os.IsNotExist(err) {
		t.Error("user-fault errors were recorded")
	}
}

func TestRecordError_PlainError(t *testing.T) {
	r, dir := newTestRecorder(t)

	r.RecordError(errors.New("something odd"), "msg_1", "p", "m", true)

	lines := readLines(t, filepath.Join(dir, "error_logs", "2026-03-14.jsonl"))
	var rec ErrorRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Error.Message != "something odd" || rec.Error.Status != 0 || rec.Error.Type != "" {
		t.Errorf("detail = %+v", rec.Error)
	}
	if !rec.Streaming {
		t.Error("streaming flag lost")
	}
}
