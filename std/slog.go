// Package std bridges the platform's standard structured logging
// facility, log/slog, into the record pipeline.
//
// NewSlogHandler returns a slog.Handler, so foreign code that logs
// through slog feeds the pipeline without knowing about it:
//
//	slog.SetDefault(slog.New(std.NewSlogHandler(logger.Default(), logger.InfoLevel)))
//
// The opposite direction (routing pipeline records into an existing
// slog backend) is handler.WrapStandardHandler.
package std

import (
	"context"
	"log/slog"

	"github.com/driftlog/driftlog/core"
	"github.com/driftlog/driftlog/logger"
)

// SlogHandler adapts a pipeline Logger to the slog.Handler interface.
type SlogHandler struct {
	logger *logger.Logger
	min    core.Level
	group  string
}

// NewSlogHandler creates a slog.Handler forwarding into l. Records
// below min are reported as disabled so slog skips building them.
func NewSlogHandler(l *logger.Logger, min core.Level) *SlogHandler {
	return &SlogHandler{logger: l, min: min}
}

// Enabled reports whether records at the given level pass the handler.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogToLevel(level).No >= s.min.No
}

// Handle converts the slog record's attrs to kwargs and submits it.
func (s *SlogHandler) Handle(ctx context.Context, record slog.Record) error {
	kv := make([]any, 0, record.NumAttrs()*2)
	record.Attrs(func(a slog.Attr) bool {
		kv = appendAttr(kv, s.group, a)
		return true
	})

	l := s.logger
	if ctx != nil {
		l = l.WithContext(ctx)
	}
	return l.Log(slogToLevel(record.Level), record.Message, kv...)
}

// WithAttrs binds the attributes into a derived logger.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	kv := make([]any, 0, len(attrs)*2)
	for _, a := range attrs {
		kv = appendAttr(kv, s.group, a)
	}
	return &SlogHandler{logger: s.logger.Bind(kv...), min: s.min, group: s.group}
}

// WithGroup prefixes subsequent attribute keys with the group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	group := name
	if s.group != "" {
		group = s.group + "." + name
	}
	return &SlogHandler{logger: s.logger, min: s.min, group: group}
}

// appendAttr flattens an attr (resolving values, expanding groups)
// into alternating key-value pairs.
func appendAttr(kv []any, prefix string, a slog.Attr) []any {
	a.Value = a.Value.Resolve()
	key := a.Key
	if prefix != "" {
		key = prefix + "." + a.Key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			kv = appendAttr(kv, key, member)
		}
		return kv
	}
	return append(kv, key, a.Value.Any())
}

// slogToLevel maps slog levels onto the pipeline's scale.
func slogToLevel(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError+4:
		return core.CriticalLevel
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarningLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
