package handler

import (
	"io"
	"os"
	"sync"

	"github.com/driftlog/driftlog/core"
	"github.com/driftlog/driftlog/formatter"
)

// flusher is implemented by writers that buffer, e.g. *bufio.Writer.
type flusher interface {
	Flush() error
}

// StreamHandler writes one formatted message plus a terminator per
// record to an io.Writer.
type StreamHandler struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter formatter.Formatter
	flush     bool
}

// StreamConfig configures a StreamHandler.
type StreamConfig struct {
	// Writer receives the formatted records (default: os.Stderr).
	Writer io.Writer
	// Formatter renders records (default: formatter.NewSimpleFormatter()).
	Formatter formatter.Formatter
	// Flush controls flush-on-write for writers that support it.
	Flush bool
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(cfg StreamConfig) *StreamHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewSimpleFormatter("")
	}
	return &StreamHandler{
		writer:    cfg.Writer,
		formatter: cfg.Formatter,
		flush:     cfg.Flush,
	}
}

// NewDefaultHandler writes to stdout with the default formatter, the
// sink used by the "default" profile.
func NewDefaultHandler() *StreamHandler {
	return NewStreamHandler(StreamConfig{
		Writer:    os.Stdout,
		Formatter: formatter.NewDefaultFormatter(),
	})
}

// NewJSONHandler writes one JSON document per record.
func NewJSONHandler(w io.Writer, cfg formatter.JSONConfig) *StreamHandler {
	return NewStreamHandler(StreamConfig{
		Writer:    w,
		Formatter: formatter.NewJSONFormatter(cfg),
	})
}

// Handle formats the record and appends exactly one message plus a
// trailing newline to the stream.
func (h *StreamHandler) Handle(r *core.Record) error {
	msg, err := h.formatter.Format(r)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.writer.Write(append(msg, '\n')); err != nil {
		return err
	}
	if h.flush {
		if f, ok := h.writer.(flusher); ok {
			return f.Flush()
		}
	}
	return nil
}

// Close flushes buffered output if the writer supports it.
func (h *StreamHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.writer.(flusher); ok {
		return f.Flush()
	}
	return nil
}
