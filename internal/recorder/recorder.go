// Package recorder appends per-request usage and error records to daily
// JSONL files. Writes are best-effort: a failing disk must never fail a
// request, so every error here is swallowed after a debug log.
package recorder

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

const (
	usageDirName = "token_usage"
	errorDirName = "error_logs"
)

// Statuses deemed user-fault; their errors are not worth recording.
var skipStatuses = map[int]struct{}{401: {}, 402: {}, 404: {}, 429: {}}

// UsageRecord is one completed request's token accounting.
type UsageRecord struct {
	Timestamp         string `json:"timestamp"`
	Provider          string `json:"provider"`
	RequestedModel    string `json:"requested_model"`
	ConcreteModel     string `json:"concrete_model"`
	InputTokens       int    `json:"input_tokens"`
	OutputTokens      int    `json:"output_tokens"`
	CachedInputTokens *int   `json:"cached_input_tokens,omitempty"`
	Streaming         bool   `json:"streaming"`
}

// ErrorRecord is one failed request.
type ErrorRecord struct {
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Provider  string      `json:"provider"`
	ModelName string      `json:"model_name"`
	Streaming bool        `json:"streaming"`
	Error     ErrorDetail `json:"error"`
}

// ErrorDetail carries the failure message plus status and type when known.
type ErrorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Recorder owns the daily files under one base directory.
type Recorder struct {
	baseDir string
	now     func() time.Time
}

// New builds a recorder rooted at baseDir (usually ~/.claude-adapter).
func New(baseDir string) *Recorder {
	return &Recorder{baseDir: baseDir, now: time.Now}
}

// RecordUsage appends a usage record to today's file. The timestamp field
// is filled here.
func (r *Recorder) RecordUsage(record UsageRecord) {
	record.Timestamp = r.now().Format(time.RFC3339)
	r.appendLine(usageDirName, record)
}

// RecordError appends an error record to today's file, unless the error's
// status is one of the suppressed user-fault codes. The timestamp field is
// filled here.
func (r *Recorder) RecordError(err error, requestID, provider, modelName string, streaming bool) {
	detail := ErrorDetail{Message: err.Error()}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		if _, skip := skipStatuses[apiErr.StatusCode]; skip {
			return
		}
		detail.Status = apiErr.StatusCode
		detail.Type = apiErr.Type
	}

	r.appendLine(errorDirName, ErrorRecord{
		Timestamp: r.now().Format(time.RFC3339),
		RequestID: requestID,
		Provider:  provider,
		ModelName: modelName,
		Streaming: streaming,
		Error:     detail,
	})
}

// appendLine writes one record as a single complete line. One write call
// per line keeps concurrent appenders safe on POSIX files.
func (r *Recorder) appendLine(dir string, record any) {
	line, err := json.Marshal(record)
	if err != nil {
		slog.Debug("recorder: marshal record", "error", err)
		return
	}
	line = append(line, '\n')

	targetDir := filepath.Join(r.baseDir, dir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		slog.Debug("recorder: create directory", "error", err)
		return
	}

	path := filepath.Join(targetDir, r.now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Debug("recorder: open daily file", "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(line); err != nil {
		slog.Debug("recorder: append record", "error", err)
	}
}
