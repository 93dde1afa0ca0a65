// Package logger configures the process-wide slog logger: a readable console
// format or JSON lines, an optional JSON log file, and redaction of API keys
// and request bodies.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Console formats accepted by Init.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

var (
	globalLogger *slog.Logger
	isTerminal   = term.IsTerminal
)

func init() {
	Init(slog.LevelInfo, FormatPretty, nil)
}

// Init replaces the global logger and slog's default.
// FormatJSON writes JSON lines to stderr; anything else uses PrettyHandler,
// colored only when stderr is a terminal and no log file is attached.
// logFile, when non-nil, additionally receives every record as JSON.
func Init(level slog.Level, format string, logFile io.Writer) {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: RedactAttr}

	var console slog.Handler
	if format == FormatJSON {
		console = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		color := logFile == nil && isTerminal(int(os.Stderr.Fd()))
		console = NewPrettyHandler(os.Stderr, opts, color)
	}

	handler := console
	if logFile != nil {
		handler = fanout{console, slog.NewJSONHandler(logFile, opts)}
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// L returns the global logger.
func L() *slog.Logger { return globalLogger }

func Info(msg string, args ...any) { globalLogger.Info(msg, args...) }
func Warn(msg string, args ...any) { globalLogger.Warn(msg, args...) }

type ctxKey struct{}

// WithRequest stores base, tagged with the request id, in ctx.
func WithRequest(ctx context.Context, base *slog.Logger, requestID string) context.Context {
	if base == nil {
		base = globalLogger
	}
	return context.WithValue(ctx, ctxKey{}, base.With("request_id", requestID))
}

// FromContext returns the request logger stored by WithRequest, or the global
// logger when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return globalLogger
}
