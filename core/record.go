package core

import (
	"fmt"
	"time"
)

// Lazy is a deferred value. Lazy values may appear anywhere in a
// record's Extra, Kwargs or Args and are resolved by the ResolveLazy
// processor (or by RenderMessage) on the worker goroutine, so an
// expensive value is only computed when the record survives filtering.
type Lazy func() any

// Record is one log event. A record is mutable but never shared: it is
// owned by the producing goroutine until it is enqueued, then by the
// worker, and every handler receives its own copy.
type Record struct {
	Level       Level
	Msg         string // raw, unformatted message
	Message     string // rendered message
	Name        string // dot-separated channel name
	Time        time.Time
	ProcessID   int
	ProcessName string
	Context     map[string]any
	Extra       map[string]any
	Args        []any
	Kwargs      map[string]any

	// Optional fields, populated by processors.
	Exception    *RecordException
	Function     string
	File         string
	Path         string
	Module       string
	Line         int
	Elapsed      time.Duration
	Preformatted bool
}

// RecordException carries the error a record was produced for together
// with the goroutine stack at capture time.
type RecordException struct {
	Value error
	Stack []byte
}

func (e *RecordException) String() string {
	if e == nil || e.Value == nil {
		return ""
	}
	return e.Value.Error()
}

// Copy returns a record the receiver no longer shares mutable state
// with at the top level. Map values themselves are not cloned; handlers
// treat them as read-only.
func (r *Record) Copy() *Record {
	c := *r
	c.Context = copyMap(r.Context)
	c.Extra = copyMap(r.Extra)
	c.Kwargs = copyMap(r.Kwargs)
	if len(r.Args) > 0 {
		c.Args = append([]any(nil), r.Args...)
	}
	return &c
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// RenderMessage returns the final message text. Pre-rendered messages
// are returned as-is; otherwise positional args (with lazy values
// resolved) are applied to the raw message.
func (r *Record) RenderMessage() string {
	if r.Preformatted || len(r.Args) == 0 {
		return r.Message
	}
	args := make([]any, len(r.Args))
	for i, a := range r.Args {
		args[i] = ResolveValue(a)
	}
	return fmt.Sprintf(r.Msg, args...)
}

// ResolveValue evaluates v if it is a Lazy thunk. A panicking thunk
// yields nil rather than killing the worker.
func ResolveValue(v any) (out any) {
	thunk, ok := v.(Lazy)
	if !ok {
		return v
	}
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return thunk()
}

// String is a best-effort one-line representation used by diagnostics.
func (r *Record) String() string {
	return fmt.Sprintf("Record(level=%s, name=%q, message=%q, extra=%v)", r.Level, r.Name, r.RenderMessage(), r.Extra)
}
