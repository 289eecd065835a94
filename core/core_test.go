package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// captureHandler records every dispatched record, for assertions.
type captureHandler struct {
	mu      sync.Mutex
	records []*Record
	closed  int
}

func (h *captureHandler) Handle(r *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed++
	return nil
}

func (h *captureHandler) snapshot() []*Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Record(nil), h.records...)
}

func (h *captureHandler) closedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type failingHandler struct{}

func (failingHandler) Handle(*Record) error { return errors.New("sink unavailable") }

func newTestRecord(level Level, msg string) *Record {
	return &Record{
		Level:   level,
		Msg:     msg,
		Message: msg,
		Name:    "test",
		Time:    time.Now().UTC(),
	}
}

func TestAddBarrierMakesHandlerVisible(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	if _, err := c.Add(h, "capture", InfoLevel, true); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Add has returned, so the handler must observe this record.
	c.Log(newTestRecord(InfoLevel, "after add"), nil)
	c.WaitForProcessed(0)

	if got := len(h.snapshot()); got != 1 {
		t.Errorf("expected 1 record after barrier, got %d", got)
	}
}

func TestDispatchOrdering(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	c.Add(h, "capture", DebugLevel, true)

	const n = 100
	for i := 0; i < n; i++ {
		c.Log(newTestRecord(InfoLevel, fmt.Sprintf("msg-%03d", i)), nil)
	}
	c.WaitForProcessed(0)

	records := h.snapshot()
	if len(records) != n {
		t.Fatalf("expected %d records, got %d", n, len(records))
	}
	for i, r := range records {
		if want := fmt.Sprintf("msg-%03d", i); r.Message != want {
			t.Fatalf("order violated at %d: got %q, want %q", i, r.Message, want)
		}
	}
}

func TestLevelGating(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	c.Add(h, "capture", ErrorLevel, true)

	c.Log(newTestRecord(InfoLevel, "filtered"), nil)
	c.Log(newTestRecord(ErrorLevel, "kept"), nil)
	c.Log(newTestRecord(CriticalLevel, "kept too"), nil)
	c.WaitForProcessed(0)

	records := h.snapshot()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Message != "kept" || records[1].Message != "kept too" {
		t.Errorf("wrong records passed the gate: %v", records)
	}
}

func TestMinLevelTracksHandlers(t *testing.T) {
	c := New()
	defer c.Close()

	if c.MinLevelNo() != noHandlerLevel {
		t.Fatalf("expected sentinel with no handlers, got %d", c.MinLevelNo())
	}

	c.Add(&captureHandler{}, "err", ErrorLevel, true)
	if got := c.MinLevelNo(); got != int64(ErrorLevel.No) {
		t.Errorf("expected min level %d, got %d", ErrorLevel.No, got)
	}

	c.Add(&captureHandler{}, "dbg", DebugLevel, true)
	if got := c.MinLevelNo(); got != int64(DebugLevel.No) {
		t.Errorf("expected min level %d, got %d", DebugLevel.No, got)
	}

	c.Remove("dbg")
	if got := c.MinLevelNo(); got != int64(ErrorLevel.No) {
		t.Errorf("expected min level back to %d after removal, got %d", ErrorLevel.No, got)
	}

	c.Remove("")
	if c.MinLevelNo() != noHandlerLevel {
		t.Errorf("expected sentinel after removing all handlers, got %d", c.MinLevelNo())
	}
}

func TestDuplicateAddIsNoop(t *testing.T) {
	c := New()
	defer c.Close()

	first := &captureHandler{}
	second := &captureHandler{}
	c.Add(first, "sink", DebugLevel, true)
	c.Add(second, "sink", DebugLevel, true)

	c.Log(newTestRecord(InfoLevel, "x"), nil)
	c.WaitForProcessed(0)

	if len(first.snapshot()) != 1 {
		t.Error("original handler should still receive records")
	}
	if len(second.snapshot()) != 0 {
		t.Error("re-added name must be a no-op")
	}
}

func TestHandlerIsolation(t *testing.T) {
	var diag bytes.Buffer
	c := NewWithConfig(Config{ErrorOutput: &diag})
	defer c.Close()

	good := &captureHandler{}
	c.Add(failingHandler{}, "bad", DebugLevel, true)
	c.Add(good, "good", DebugLevel, true)

	const n = 10
	for i := 0; i < n; i++ {
		c.Log(newTestRecord(InfoLevel, "x"), nil)
	}
	c.WaitForProcessed(0)

	if got := len(good.snapshot()); got != n {
		t.Errorf("well-behaved handler missed records: got %d, want %d", got, n)
	}
	out := diag.String()
	if !strings.Contains(out, `Logging error in handler "bad"`) {
		t.Errorf("expected diagnostic for failing handler, got: %s", out)
	}
	if !strings.Contains(out, "sink unavailable") {
		t.Errorf("diagnostic should include the handler error, got: %s", out)
	}
}

func TestPanickingHandlerIsolation(t *testing.T) {
	var diag bytes.Buffer
	c := NewWithConfig(Config{ErrorOutput: &diag})
	defer c.Close()

	good := &captureHandler{}
	c.Add(HandlerFunc(func(*Record) error { panic("kaboom") }), "panicky", DebugLevel, true)
	c.Add(good, "good", DebugLevel, true)

	c.Log(newTestRecord(InfoLevel, "x"), nil)
	c.WaitForProcessed(0)

	if len(good.snapshot()) != 1 {
		t.Error("panic in one handler aborted dispatch to the next")
	}
	if !strings.Contains(diag.String(), "kaboom") {
		t.Errorf("expected panic diagnostic, got: %s", diag.String())
	}
}

func TestPrintErrorsFlagSuppressesDiagnostics(t *testing.T) {
	var diag bytes.Buffer
	c := NewWithConfig(Config{ErrorOutput: &diag})
	defer c.Close()

	c.Add(failingHandler{}, "quiet", DebugLevel, false)
	c.Log(newTestRecord(InfoLevel, "x"), nil)
	c.WaitForProcessed(0)

	if diag.Len() != 0 {
		t.Errorf("expected no diagnostics with print_errors=false, got: %s", diag.String())
	}
}

func TestProcessorTransformAndDrop(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	c.Add(h, "capture", DebugLevel, true)

	tag := Processor(func(r *Record) Action {
		if r.Extra == nil {
			r.Extra = map[string]any{}
		}
		r.Extra["tagged"] = true
		return Continue
	})
	dropOdd := Processor(func(r *Record) Action {
		if strings.HasSuffix(r.Message, "1") {
			return Drop
		}
		return Continue
	})

	c.Log(newTestRecord(InfoLevel, "rec-0"), []Processor{tag, dropOdd})
	c.Log(newTestRecord(InfoLevel, "rec-1"), []Processor{tag, dropOdd})
	c.WaitForProcessed(0)

	records := h.snapshot()
	if len(records) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(records))
	}
	if records[0].Message != "rec-0" || records[0].Extra["tagged"] != true {
		t.Errorf("transform not applied or wrong record survived: %v", records[0])
	}
}

func TestCoreProcessorsRunAfterPerCall(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	c.Add(h, "capture", DebugLevel, true)

	var order []string
	var mu sync.Mutex
	mark := func(tag string) Processor {
		return func(*Record) Action {
			mu.Lock()
			order = append(order, tag)
			mu.Unlock()
			return Continue
		}
	}
	c.Configure(ConfigureConfig{Processors: []Processor{mark("core")}})

	c.Log(newTestRecord(InfoLevel, "x"), []Processor{mark("call")})
	c.WaitForProcessed(0)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "call" || order[1] != "core" {
		t.Errorf("expected per-call processors before core processors, got %v", order)
	}
}

func TestPanickingProcessorContinuesChain(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	c.Add(h, "capture", DebugLevel, true)

	bad := Processor(func(*Record) Action { panic("processor bug") })
	c.Log(newTestRecord(InfoLevel, "survives"), []Processor{bad})
	c.WaitForProcessed(0)

	if len(h.snapshot()) != 1 {
		t.Error("record lost to a panicking processor")
	}
}

func TestRemoveClosesHandler(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	c.Add(h, "capture", DebugLevel, true)
	c.Remove("capture")

	if h.closedCount() != 1 {
		t.Errorf("expected exactly one Close call, got %d", h.closedCount())
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	c := New()

	h := &captureHandler{}
	c.Add(h, "capture", DebugLevel, true)

	const n = 100
	for i := 0; i < n; i++ {
		c.Log(newTestRecord(InfoLevel, "queued"), nil)
	}
	c.Close()

	if got := len(h.snapshot()); got != n {
		t.Errorf("graceful shutdown lost records: got %d, want %d", got, n)
	}
	if h.closedCount() != 1 {
		t.Errorf("expected handler closed once on teardown, got %d", h.closedCount())
	}
	if c.IsAlive() {
		t.Error("worker still alive after Close")
	}
	// Close is idempotent.
	c.Close()
}

func TestConfigureReplacesHandlersAndOptions(t *testing.T) {
	c := New()
	defer c.Close()

	old := &captureHandler{}
	c.Add(old, "old", DebugLevel, true)

	fresh := &captureHandler{}
	added, err := c.Configure(ConfigureConfig{
		Handlers: []HandlerSpec{{Handler: fresh, Name: "fresh", Level: DebugLevel, PrintErrors: true}},
		Extra:    map[string]any{"app": "demo"},
	})
	if err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if len(added) != 1 || added[0].Name != "fresh" {
		t.Fatalf("unexpected added handlers: %v", added)
	}
	if old.closedCount() != 1 {
		t.Error("configure with a handler set must close replaced handlers")
	}
	if c.Options().Extra["app"] != "demo" {
		t.Error("core options not replaced")
	}

	c.Log(newTestRecord(InfoLevel, "x"), nil)
	c.WaitForProcessed(0)
	if len(old.snapshot()) != 0 || len(fresh.snapshot()) != 1 {
		t.Error("records routed to the wrong handler set after configure")
	}
}

func TestWaitForProcessedTimeoutOnStoppedCore(t *testing.T) {
	c := New()
	c.Close()

	start := time.Now()
	c.WaitForProcessed(50 * time.Millisecond)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("barrier on a stopped core should return promptly, took %v", elapsed)
	}
}

func TestConcurrentProducers(t *testing.T) {
	c := New()
	defer c.Close()

	h := &captureHandler{}
	c.Add(h, "capture", DebugLevel, true)

	const producers = 16
	const perProducer = 50
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				c.Log(newTestRecord(InfoLevel, "concurrent"), nil)
			}
		}()
	}
	wg.Wait()
	c.WaitForProcessed(0)

	if got := len(h.snapshot()); got != producers*perProducer {
		t.Errorf("expected %d records, got %d", producers*perProducer, got)
	}
}

func TestAddValidation(t *testing.T) {
	c := New()
	defer c.Close()

	if _, err := c.Add(nil, "x", InfoLevel, true); err == nil {
		t.Error("expected error for nil handler")
	}
	if _, err := c.Add(&captureHandler{}, "x", "NOPE", true); err == nil {
		t.Error("expected error for unknown level")
	}

	hr, err := c.Add(&captureHandler{}, "", InfoLevel, true)
	if err != nil {
		t.Fatalf("add with derived name failed: %v", err)
	}
	if hr.Name == "" {
		t.Error("expected a derived handler name")
	}
}
