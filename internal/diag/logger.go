// Package diag configures the structured logger shared by the connector.
package diag

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel maps a configured level name to a slog level. Unknown or empty
// names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w at the given level and format.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return Discard()
	}
	return log
}

// Timer measures one stage of work for a finish log line.
type Timer struct {
	log   *slog.Logger
	stage string
	t0    time.Time
}

// Start logs the start of stage at debug level and returns its timer.
func Start(log *slog.Logger, stage string, args ...any) *Timer {
	log.Debug(stage+" start", args...)
	return &Timer{log: log, stage: stage, t0: time.Now()}
}

// Finish logs the end of the stage with its duration and row count.
func (t *Timer) Finish(count int64, args ...any) {
	args = append(args, "count", count, "dur_ms", time.Since(t.t0).Milliseconds())
	t.log.Debug(t.stage+" finish", args...)
}
