// Package zaphandler routes pipeline records into a zap.Logger, so the
// pipeline's preprocessing, buffering and fan-out can sit in front of
// an existing zap deployment.
package zaphandler

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/driftlog/driftlog/core"
)

// Handler forwards records to a zap.Logger.
type Handler struct {
	logger *zap.Logger
}

// New creates a zap-backed sink.
func New(l *zap.Logger) *Handler {
	return &Handler{logger: l}
}

// Handle converts the record into zap fields and emits it at the
// mapped level. CRITICAL maps to zap's Error to avoid DPanic/Fatal
// side effects.
func (h *Handler) Handle(r *core.Record) error {
	ce := h.logger.Check(mapLevel(r.Level), r.RenderMessage())
	if ce == nil {
		return nil
	}

	fields := make([]zap.Field, 0, len(r.Extra)+len(r.Context)+len(r.Kwargs)+3)
	fields = append(fields, zap.Time("ts", r.Time))
	if r.Name != "" {
		fields = append(fields, zap.String("logger", r.Name))
	}
	for k, v := range r.Context {
		fields = append(fields, zap.Any(k, core.ResolveValue(v)))
	}
	for k, v := range r.Extra {
		fields = append(fields, zap.Any(k, core.ResolveValue(v)))
	}
	for k, v := range r.Kwargs {
		fields = append(fields, zap.Any(k, core.ResolveValue(v)))
	}
	if r.Exception != nil && r.Exception.Value != nil {
		fields = append(fields, zap.Error(r.Exception.Value))
	}

	ce.Write(fields...)
	return nil
}

// Close flushes zap's buffers.
func (h *Handler) Close() error {
	return h.logger.Sync()
}

func mapLevel(l core.Level) zapcore.Level {
	switch {
	case l.No >= core.ErrorLevel.No:
		return zapcore.ErrorLevel
	case l.No >= core.WarningLevel.No:
		return zapcore.WarnLevel
	case l.No >= core.InfoLevel.No:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
