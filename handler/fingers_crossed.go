package handler

import (
	"github.com/driftlog/driftlog/core"
)

// FingersCrossedHandler buffers records in a bounded ring until one at
// or above the action level arrives, then flushes the buffered history
// (oldest first) to the inner handler. Afterwards it either stays
// triggered and forwards everything immediately, or, with Reset, goes
// back to buffering.
//
// The Core invokes a handler from a single goroutine, so the state
// machine needs no locking.
type FingersCrossedHandler struct {
	inner     core.Handler
	actionNo  int
	reset     bool
	buffer    []*core.Record // ring storage
	start     int            // index of oldest buffered record
	count     int
	triggered bool
}

// FingersCrossedConfig configures a FingersCrossedHandler.
type FingersCrossedConfig struct {
	// ActionLevel triggers the flush (default core.ErrorLevel.No).
	ActionLevel int
	// BufferSize bounds the history; 1 keeps only the triggering
	// record itself (default 1). The oldest record is evicted on
	// overflow.
	BufferSize int
	// Reset returns to buffering after each flush instead of staying
	// triggered.
	Reset bool
}

// NewFingersCrossedHandler wraps inner with buffer-and-trigger
// semantics.
func NewFingersCrossedHandler(inner core.Handler, cfg FingersCrossedConfig) *FingersCrossedHandler {
	if cfg.ActionLevel <= 0 {
		cfg.ActionLevel = core.ErrorLevel.No
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	return &FingersCrossedHandler{
		inner:    inner,
		actionNo: cfg.ActionLevel,
		reset:    cfg.Reset,
		buffer:   make([]*core.Record, cfg.BufferSize),
	}
}

// Handle buffers or forwards r according to the current state.
func (h *FingersCrossedHandler) Handle(r *core.Record) error {
	if h.triggered {
		return h.inner.Handle(r)
	}

	h.push(r)
	if r.Level.No >= h.actionNo {
		return h.rollover()
	}
	return nil
}

// push appends r to the ring, evicting the oldest record when full.
func (h *FingersCrossedHandler) push(r *core.Record) {
	if h.count == len(h.buffer) {
		h.buffer[h.start] = r
		h.start = (h.start + 1) % len(h.buffer)
		return
	}
	h.buffer[(h.start+h.count)%len(h.buffer)] = r
	h.count++
}

// rollover flushes the buffered history oldest-first and latches into
// the triggered state unless Reset is set.
func (h *FingersCrossedHandler) rollover() error {
	var firstErr error
	for i := 0; i < h.count; i++ {
		r := h.buffer[(h.start+i)%len(h.buffer)]
		if err := h.inner.Handle(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for i := range h.buffer {
		h.buffer[i] = nil
	}
	h.start, h.count = 0, 0
	h.triggered = !h.reset
	return firstErr
}

// Close delegates to the inner handler.
func (h *FingersCrossedHandler) Close() error {
	if closer, ok := h.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
