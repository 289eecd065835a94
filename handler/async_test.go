package handler

import (
	"sync"
	"testing"
	"time"

	"github.com/driftlog/driftlog/core"
)

// blockingHandler holds every Handle call until released.
type blockingHandler struct {
	release chan struct{}
	mu      sync.Mutex
	handled []*core.Record
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{release: make(chan struct{})}
}

func (b *blockingHandler) Handle(r *core.Record) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handled = append(b.handled, r)
	return nil
}

func (b *blockingHandler) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handled)
}

func TestAsyncDeliversInOrder(t *testing.T) {
	inner := &capture{}
	h := NewAsyncHandler(inner, AsyncConfig{BufferSize: 16})

	for _, m := range []string{"a", "b", "c"} {
		if err := h.Handle(rec(core.InfoLevel, m)); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := inner.messages()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order broken: got %v", got)
		}
	}
	if h.Stats().Processed() != 3 {
		t.Errorf("processed counter = %d, want 3", h.Stats().Processed())
	}
}

func TestAsyncDropNewestOnOverflow(t *testing.T) {
	inner := newBlockingHandler()
	h := NewAsyncHandler(inner, AsyncConfig{
		BufferSize:     1,
		OverflowPolicy: map[int]OverflowPolicy{core.DebugLevel.No: DropNewest},
	})

	// First record is pulled by the consumer and parks in the inner
	// handler; the second fills the queue; the rest must drop.
	h.Handle(rec(core.DebugLevel, "consumed"))
	waitFor(t, func() bool { return len(h.queue) == 0 })
	h.Handle(rec(core.DebugLevel, "queued"))
	h.Handle(rec(core.DebugLevel, "dropped-1"))
	h.Handle(rec(core.DebugLevel, "dropped-2"))

	if got := h.Stats().Dropped(); got != 2 {
		t.Errorf("dropped counter = %d, want 2", got)
	}

	close(inner.release)
	h.Close()
	if inner.count() != 2 {
		t.Errorf("expected 2 delivered records, got %d", inner.count())
	}
}

func TestAsyncDropOldestKeepsNewest(t *testing.T) {
	inner := newBlockingHandler()
	h := NewAsyncHandler(inner, AsyncConfig{
		BufferSize:     1,
		OverflowPolicy: map[int]OverflowPolicy{core.DebugLevel.No: DropOldest},
	})

	h.Handle(rec(core.DebugLevel, "consumed"))
	waitFor(t, func() bool { return len(h.queue) == 0 })
	h.Handle(rec(core.DebugLevel, "old"))
	h.Handle(rec(core.DebugLevel, "new"))

	if got := h.Stats().Dropped(); got != 1 {
		t.Errorf("dropped counter = %d, want 1", got)
	}

	close(inner.release)
	h.Close()

	inner.mu.Lock()
	defer inner.mu.Unlock()
	last := inner.handled[len(inner.handled)-1]
	if last.Msg != "new" {
		t.Errorf("newest record must survive eviction, got %q", last.Msg)
	}
}

func TestAsyncBlockFallsBackToSyncWrite(t *testing.T) {
	inner := newBlockingHandler()
	h := NewAsyncHandler(inner, AsyncConfig{
		BufferSize:     1,
		OverflowPolicy: map[int]OverflowPolicy{core.ErrorLevel.No: Block},
		BlockTimeout:   10 * time.Millisecond,
	})

	h.Handle(rec(core.ErrorLevel, "consumed"))
	waitFor(t, func() bool { return len(h.queue) == 0 })
	h.Handle(rec(core.ErrorLevel, "queued"))

	// The queue is full and the consumer is parked, so this blocks,
	// times out, and must complete synchronously once released.
	done := make(chan error, 1)
	go func() { done <- h.Handle(rec(core.ErrorLevel, "sync")) }()

	time.Sleep(30 * time.Millisecond)
	close(inner.release)
	if err := <-done; err != nil {
		t.Fatalf("sync fallback: %v", err)
	}
	if got := h.Stats().Blocked(); got != 1 {
		t.Errorf("blocked counter = %d, want 1", got)
	}

	h.Close()
	if h.Stats().Dropped() != 0 {
		t.Errorf("block policy must not drop, dropped=%d", h.Stats().Dropped())
	}
}

func TestAsyncBlockSerializesWithConsumer(t *testing.T) {
	// FingersCrossedHandler is deliberately lock-free, so this only
	// holds if the timeout fallback never runs concurrently with the
	// consumer goroutine.
	inner := &capture{}
	fc := NewFingersCrossedHandler(inner, FingersCrossedConfig{BufferSize: 4})
	h := NewAsyncHandler(fc, AsyncConfig{
		BufferSize:     2,
		OverflowPolicy: map[int]OverflowPolicy{core.ErrorLevel.No: Block},
		BlockTimeout:   time.Microsecond,
	})

	const producers, perProducer = 8, 200
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				h.Handle(rec(core.ErrorLevel, "boom"))
			}
		}()
	}
	wg.Wait()
	h.Close()

	if got := len(inner.snapshot()); got != producers*perProducer {
		t.Errorf("delivered %d of %d records", got, producers*perProducer)
	}
	if h.Stats().Dropped() != 0 {
		t.Errorf("block policy must not drop, dropped=%d", h.Stats().Dropped())
	}
}

func TestAsyncCloseDrainsQueue(t *testing.T) {
	inner := &capture{}
	h := NewAsyncHandler(inner, AsyncConfig{BufferSize: 128})

	for i := 0; i < 100; i++ {
		h.Handle(rec(core.InfoLevel, "payload"))
	}
	h.Close()

	if got := len(inner.snapshot()); got != 100 {
		t.Errorf("close must drain pending records, delivered %d of 100", got)
	}
	if inner.closed != 1 {
		t.Errorf("inner handler not closed, count=%d", inner.closed)
	}
}

func TestAsyncCloseIsIdempotent(t *testing.T) {
	inner := &capture{}
	h := NewAsyncHandler(inner, AsyncConfig{})

	if err := h.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
