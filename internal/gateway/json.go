package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

// writeJSON writes a JSON response with the given status code.
// Logs encoding failures internally using the provided context.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	// Headers and status are written before encoding to avoid buffering.
	// If encoding fails, the client may receive a partial response.
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeAPIError writes an Anthropic-shaped JSON error, deriving the error
// type from the status code.
func writeAPIError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeErrorType(ctx, w, status, anthropic.ErrorTypeForStatus(status), message)
}

// writeErrorType writes an Anthropic-shaped JSON error with an explicit
// error type.
func writeErrorType(ctx context.Context, w http.ResponseWriter, status int, errType, message string) {
	writeJSON(ctx, w, anthropic.NewErrorResponse(status, errType, message), status)
}
