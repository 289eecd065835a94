package processor

import (
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/trickstertwo/xclock"

	"github.com/driftlog/driftlog/core"
)

// DefaultCallerSkip reaches the user's call site from a preprocessor
// invoked by a Logger level method.
const DefaultCallerSkip = 3

// DefaultPreprocessors returns the preprocessor chain of the default
// profile.
func DefaultPreprocessors() []core.Processor {
	return []core.Processor{ExcInfo}
}

// DefaultProcessors returns the processor chain of the default profile.
func DefaultProcessors() []core.Processor {
	return []core.Processor{ContextToExtra, KwargsToExtra, ResolveLazy}
}

// ExcInfo is a preprocessor that consumes the "exc_info" kwarg set by
// Logger.Exception: it captures the current stack and promotes an
// "err" kwarg, when present, into the record's Exception.
func ExcInfo(r *core.Record) core.Action {
	raw, ok := r.Kwargs["exc_info"]
	if !ok {
		return core.Continue
	}
	delete(r.Kwargs, "exc_info")
	if want, _ := raw.(bool); !want {
		return core.Continue
	}

	exc := &core.RecordException{Stack: debug.Stack()}
	if err, ok := r.Kwargs["err"].(error); ok {
		exc.Value = err
		delete(r.Kwargs, "err")
	}
	r.Exception = exc
	return core.Continue
}

// CallerInfo returns a preprocessor that records the call site
// (function, file, line, module). It must run on the caller's
// goroutine; use DefaultCallerSkip when wiring it into a logger chain.
func CallerInfo(skip int) core.Processor {
	return func(r *core.Record) core.Action {
		pc, file, line, ok := runtime.Caller(skip)
		if !ok {
			return core.Continue
		}
		if fn := runtime.FuncForPC(pc); fn != nil {
			r.Function = fn.Name()
		}
		r.Path = file
		r.File = filepath.Base(file)
		r.Module = strings.TrimSuffix(r.File, filepath.Ext(r.File))
		r.Line = line
		return core.Continue
	}
}

// ContextToExtra merges the record's ambient context into its extra
// fields.
func ContextToExtra(r *core.Record) core.Action {
	if len(r.Context) == 0 {
		return core.Continue
	}
	if r.Extra == nil {
		r.Extra = make(map[string]any, len(r.Context))
	}
	for k, v := range r.Context {
		r.Extra[k] = v
	}
	return core.Continue
}

// KwargsToExtra merges the call-site kwargs into the extra fields.
func KwargsToExtra(r *core.Record) core.Action {
	if len(r.Kwargs) == 0 {
		return core.Continue
	}
	if r.Extra == nil {
		r.Extra = make(map[string]any, len(r.Kwargs))
	}
	for k, v := range r.Kwargs {
		r.Extra[k] = v
	}
	return core.Continue
}

// ResolveLazy evaluates deferred values in extra, kwargs and args.
// It runs on the worker, so thunks are only paid for records that
// survived filtering.
func ResolveLazy(r *core.Record) core.Action {
	for k, v := range r.Extra {
		r.Extra[k] = core.ResolveValue(v)
	}
	for k, v := range r.Kwargs {
		r.Kwargs[k] = core.ResolveValue(v)
	}
	for i, v := range r.Args {
		r.Args[i] = core.ResolveValue(v)
	}
	return core.Continue
}

// PreformatMessage renders the message once so later stages and every
// handler see the final text.
func PreformatMessage(r *core.Record) core.Action {
	if r.Preformatted {
		return core.Continue
	}
	r.Message = r.RenderMessage()
	r.Preformatted = true
	return core.Continue
}

// Elapsed returns a processor stamping each record with the time since
// the processor was created.
func Elapsed() core.Processor {
	start := xclock.Now()
	return func(r *core.Record) core.Action {
		r.Elapsed = xclock.Now().Sub(start)
		return core.Continue
	}
}

// RemoveExtraKeys returns a processor deleting the given keys from the
// extra fields, e.g. to scrub sensitive values before dispatch.
func RemoveExtraKeys(keys ...string) core.Processor {
	return func(r *core.Record) core.Action {
		for _, k := range keys {
			delete(r.Extra, k)
		}
		return core.Continue
	}
}

// Duration measures named start/stop spans across log calls: a "start"
// kwarg opens a span, a matching "stop" kwarg closes it and attaches
// the duration. When the record has no message, one is synthesized.
// A Duration value belongs to a single chain; the Core invokes it from
// one goroutine only.
type Duration struct {
	starts     map[string]time.Time
	addMessage bool
}

// NewDuration creates a Duration processor that synthesizes messages
// for silent start/stop records.
func NewDuration() *Duration {
	return &Duration{starts: make(map[string]time.Time), addMessage: true}
}

// Process implements the span bookkeeping; wire it with
// (*Duration).Processor.
func (d *Duration) Process(r *core.Record) core.Action {
	if name, ok := r.Kwargs["start"].(string); ok {
		d.starts[name] = xclock.Now()
		if r.Message == "" && d.addMessage {
			r.Message = "Start " + name + "."
			r.Preformatted = true
		}
	}
	if name, ok := r.Kwargs["stop"].(string); ok {
		if begin, ok := d.starts[name]; ok {
			delete(d.starts, name)
			dur := xclock.Now().Sub(begin)
			r.Kwargs["duration"] = dur
			if r.Message == "" && d.addMessage {
				r.Message = "Stop " + name + ". Duration: " + dur.String() + "."
				r.Preformatted = true
			}
		}
	}
	return core.Continue
}

// Processor adapts the Duration to the chain signature.
func (d *Duration) Processor() core.Processor {
	return d.Process
}
