package handler

import (
	"go.uber.org/multierr"

	"github.com/driftlog/driftlog/core"
)

// MultiHandler fans one registration out to several inner handlers.
// Useful for wrapping a single FingersCrossedHandler or AsyncHandler
// around more than one sink.
type MultiHandler struct {
	handlers []core.Handler
}

// NewMultiHandler creates a handler dispatching to all given handlers
// in order.
func NewMultiHandler(handlers ...core.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Handle forwards the record to every inner handler; errors are
// collected, not short-circuited.
func (h *MultiHandler) Handle(r *core.Record) error {
	var err error
	for _, inner := range h.handlers {
		err = multierr.Append(err, inner.Handle(r))
	}
	return err
}

// Close closes every inner handler that supports it.
func (h *MultiHandler) Close() error {
	var err error
	for _, inner := range h.handlers {
		if closer, ok := inner.(interface{ Close() error }); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}
