// Package zerologhandler routes pipeline records into a
// zerolog.Logger.
package zerologhandler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/driftlog/driftlog/core"
)

// Handler forwards records to a zerolog.Logger.
type Handler struct {
	logger zerolog.Logger
}

// New creates a zerolog-backed sink.
func New(l zerolog.Logger) *Handler {
	return &Handler{logger: l}
}

// Handle converts the record into a zerolog event. CRITICAL maps to
// zerolog's Error level to avoid Fatal's os.Exit side effect.
func (h *Handler) Handle(r *core.Record) error {
	zlvl := mapLevel(r.Level)
	if zlvl < h.logger.GetLevel() {
		return nil
	}

	ev := h.logger.WithLevel(zlvl)
	ev.Str("ts", r.Time.UTC().Format(time.RFC3339Nano))
	if r.Name != "" {
		ev.Str("logger", r.Name)
	}
	for k, v := range r.Context {
		ev.Interface(k, core.ResolveValue(v))
	}
	for k, v := range r.Extra {
		ev.Interface(k, core.ResolveValue(v))
	}
	for k, v := range r.Kwargs {
		ev.Interface(k, core.ResolveValue(v))
	}
	if r.Exception != nil && r.Exception.Value != nil {
		ev.Err(r.Exception.Value)
	}
	ev.Msg(r.RenderMessage())
	return nil
}

func mapLevel(l core.Level) zerolog.Level {
	switch {
	case l.No >= core.ErrorLevel.No:
		return zerolog.ErrorLevel
	case l.No >= core.WarningLevel.No:
		return zerolog.WarnLevel
	case l.No >= core.InfoLevel.No:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
