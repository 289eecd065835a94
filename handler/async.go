package handler

import (
	"sync"
	"time"

	"github.com/driftlog/driftlog/core"
)

// AsyncHandler decouples a slow inner handler from the pipeline worker:
// records go into a bounded queue consumed by a dedicated goroutine.
// When the queue is full the per-level overflow policy decides between
// dropping the newest record, evicting the oldest, or blocking with a
// timeout. Deliveries to the inner handler are serialized, so the inner
// handler does not need to be safe for concurrent use. Close drains the
// queue (bounded by DrainTimeout) and then closes the inner handler.
type AsyncHandler struct {
	inner          core.Handler
	queue          chan *core.Record
	closed         chan struct{}
	wg             sync.WaitGroup
	closeOnce      sync.Once
	writeMu        sync.Mutex
	overflowPolicy map[int]OverflowPolicy
	blockTimeout   time.Duration
	drainTimeout   time.Duration
	stats          Stats
}

// AsyncConfig configures an AsyncHandler.
type AsyncConfig struct {
	// BufferSize is the queue capacity (default 1000).
	BufferSize int
	// OverflowPolicy maps level numbers to policies
	// (default DefaultLevelPolicy; unknown levels drop newest).
	OverflowPolicy map[int]OverflowPolicy
	// BlockTimeout bounds the Block policy (default 100ms).
	BlockTimeout time.Duration
	// DrainTimeout bounds queue draining on Close (default 5s).
	DrainTimeout time.Duration
}

// NewAsyncHandler wraps inner with a bounded queue and starts the
// consumer goroutine.
func NewAsyncHandler(inner core.Handler, cfg AsyncConfig) *AsyncHandler {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.OverflowPolicy == nil {
		cfg.OverflowPolicy = DefaultLevelPolicy()
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	h := &AsyncHandler{
		inner:          inner,
		queue:          make(chan *core.Record, cfg.BufferSize),
		closed:         make(chan struct{}),
		overflowPolicy: cfg.OverflowPolicy,
		blockTimeout:   cfg.BlockTimeout,
		drainTimeout:   cfg.DrainTimeout,
	}
	h.wg.Add(1)
	go h.process()
	return h
}

// Stats exposes the handler's counters.
func (h *AsyncHandler) Stats() *Stats {
	return &h.stats
}

// Handle enqueues the record, applying the overflow policy when the
// queue is full.
func (h *AsyncHandler) Handle(r *core.Record) error {
	policy, ok := h.overflowPolicy[r.Level.No]
	if !ok {
		policy = DropNewest
	}

	switch policy {
	case Block:
		select {
		case h.queue <- r:
			return nil
		default:
		}
		h.stats.blocked.Add(1)
		t := time.NewTimer(h.blockTimeout)
		defer t.Stop()
		select {
		case h.queue <- r:
			return nil
		case <-t.C:
			// Timed out: write synchronously rather than lose it.
			return h.write(r)
		case <-h.closed:
			return h.write(r)
		}

	case DropOldest:
		select {
		case h.queue <- r:
			return nil
		default:
		}
		select {
		case <-h.queue:
			h.stats.dropped.Add(1)
		default:
		}
		select {
		case h.queue <- r:
			return nil
		default:
			h.stats.dropped.Add(1)
			return nil
		}

	default: // DropNewest
		select {
		case h.queue <- r:
			return nil
		default:
			h.stats.dropped.Add(1)
			return nil
		}
	}
}

// write delivers r to the inner handler. The Block policy's timeout
// fallback writes on the caller's goroutine while the consumer may be
// writing too, so every delivery goes through one mutex: the inner
// handler never sees concurrent Handle calls.
func (h *AsyncHandler) write(r *core.Record) error {
	h.writeMu.Lock()
	err := h.inner.Handle(r)
	h.writeMu.Unlock()
	h.stats.processed.Add(1)
	return err
}

// process is the consumer loop; on close it drains the queue with a
// deadline.
func (h *AsyncHandler) process() {
	defer h.wg.Done()

	for {
		select {
		case r := <-h.queue:
			_ = h.write(r)
		case <-h.closed:
			deadline := time.After(h.drainTimeout)
			for {
				select {
				case r := <-h.queue:
					_ = h.write(r)
				case <-deadline:
					return
				default:
					return
				}
			}
		}
	}
}

// Close stops the consumer, drains pending records with a timeout and
// closes the inner handler.
func (h *AsyncHandler) Close() error {
	h.closeOnce.Do(func() {
		close(h.closed)
	})
	h.wg.Wait()

	if closer, ok := h.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
