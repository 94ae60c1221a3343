// Package observability installs the process-wide structured logger.
package observability

import (
	"fmt"
	"log/slog"
	"os"
)

// Instrument configures the default slog handler with the given level and
// output format ("text" or "json").
func Instrument(level slog.Level, format string) error {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
