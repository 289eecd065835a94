package benchmark

import (
	"github.com/driftlog/driftlog/core"
)

type noopHandler struct{}

func newNoopHandler() core.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Handle(r *core.Record) error {
	_ = len(r.Message)
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}
