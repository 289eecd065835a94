package handler

import (
	"context"
	"log/slog"

	"github.com/driftlog/driftlog/core"
)

// WrapStandardHandler forwards records to a log/slog Handler, the
// platform's standard structured logging facility. It lets the pipeline
// feed any existing slog backend.
type WrapStandardHandler struct {
	handler slog.Handler
}

// NewWrapStandardHandler wraps a slog.Handler as a pipeline sink.
func NewWrapStandardHandler(h slog.Handler) *WrapStandardHandler {
	return &WrapStandardHandler{handler: h}
}

// Handle converts the record to a slog.Record and hands it over.
func (w *WrapStandardHandler) Handle(r *core.Record) error {
	sr := slog.NewRecord(r.Time, levelToSlog(r.Level), r.RenderMessage(), 0)

	if r.Name != "" {
		sr.AddAttrs(slog.String("logger", r.Name))
	}
	for k, v := range r.Context {
		sr.AddAttrs(slog.Any(k, core.ResolveValue(v)))
	}
	for k, v := range r.Extra {
		sr.AddAttrs(slog.Any(k, core.ResolveValue(v)))
	}
	for k, v := range r.Kwargs {
		sr.AddAttrs(slog.Any(k, core.ResolveValue(v)))
	}
	if r.Exception != nil && r.Exception.Value != nil {
		sr.AddAttrs(slog.Any("error", r.Exception.Value))
	}

	return w.handler.Handle(context.Background(), sr)
}

// levelToSlog maps pipeline levels onto slog's scale. Custom levels
// fall into the nearest canonical bucket; CRITICAL maps above ERROR.
func levelToSlog(l core.Level) slog.Level {
	switch {
	case l.No >= core.CriticalLevel.No:
		return slog.LevelError + 4
	case l.No >= core.ErrorLevel.No:
		return slog.LevelError
	case l.No >= core.WarningLevel.No:
		return slog.LevelWarn
	case l.No >= core.InfoLevel.No:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
