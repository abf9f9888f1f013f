package logging

import (
	"log/slog"
	"slices"
	"time"
)

// Attr is the attribute type accepted by every helper in this package.
type Attr = slog.Attr

const (
	defaultErrorHint = "run `dubber logs --session <id>` for the full trace"
	defaultImpact    = "the run continues with reduced output"
)

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Any(key string, value any) Attr { return slog.Any(key, value) }

// Error records err under the "error" key. A nil error is rendered as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with the component name. A nil logger
// becomes a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. Caller-supplied values win over the defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, String(FieldEventType, eventType))
	attrs = withDefault(attrs, String(FieldErrorHint, defaultErrorHint))
	attrs = withDefault(attrs, String(FieldImpact, defaultImpact))
	logger.Warn(msg, toArgs(attrs)...)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, String(FieldEventType, eventType))
	attrs = withDefault(attrs, String(FieldErrorHint, defaultErrorHint))
	logger.Error(msg, toArgs(attrs)...)
}

func withDefault(attrs []Attr, fallback Attr) []Attr {
	if slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == fallback.Key }) {
		return attrs
	}
	return append(attrs, fallback)
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}
