package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trickstertwo/xclock"

	"github.com/driftlog/driftlog/core"
)

// badKey collects the value of a trailing key without a pair, matching
// the convention of log/slog.
const badKey = "!BADKEY"

var (
	processID   = os.Getpid()
	processName = filepath.Base(os.Args[0])
)

// Logger is an immutable front-end handle: a Core reference plus the
// per-call-site options (name, preprocessor/processor chains, bound
// extra fields) and an optional ambient context.
type Logger struct {
	core *core.Core
	opts core.Options
	ctx  context.Context
}

// New creates a Logger bound to c. The preprocessor and processor
// chains and the extra map are copied.
func New(c *core.Core, name string, preprocessors, processors []core.Processor, extra map[string]any) *Logger {
	return &Logger{
		core: c,
		opts: core.NewOptions(name, preprocessors, processors, extra),
	}
}

// Core returns the pipeline engine this logger feeds.
func (l *Logger) Core() *core.Core {
	return l.core
}

// Name returns the logger's channel name.
func (l *Logger) Name() string {
	return l.opts.Name
}

// Extra returns a copy of the logger's bound fields.
func (l *Logger) Extra() map[string]any {
	out := make(map[string]any, len(l.opts.Extra))
	for k, v := range l.opts.Extra {
		out[k] = v
	}
	return out
}

// Option customizes a derived logger. Omitted aspects are inherited.
type Option func(*deriveConfig)

type deriveConfig struct {
	name          *string
	preprocessors *[]core.Processor
	processors    *[]core.Processor
	extra         *map[string]any
}

// WithName sets the derived logger's channel name.
func WithName(name string) Option {
	return func(c *deriveConfig) { c.name = &name }
}

// WithPreprocessors replaces the derived logger's preprocessor chain.
func WithPreprocessors(ps ...core.Processor) Option {
	return func(c *deriveConfig) { c.preprocessors = &ps }
}

// WithProcessors replaces the derived logger's per-call processor chain.
func WithProcessors(ps ...core.Processor) Option {
	return func(c *deriveConfig) { c.processors = &ps }
}

// WithExtra replaces the derived logger's bound fields.
func WithExtra(extra map[string]any) Option {
	return func(c *deriveConfig) { c.extra = &extra }
}

// With returns a derived Logger. Aspects not overridden by an Option
// are inherited. Called with no options at all, the name is derived
// from the caller's package and function as a best-effort convenience;
// if the call site cannot be identified the name is empty.
func (l *Logger) With(opts ...Option) *Logger {
	next := &Logger{core: l.core, ctx: l.ctx}

	if len(opts) == 0 {
		next.opts = core.NewOptions(callerName(1), l.opts.Preprocessors, l.opts.Processors, l.opts.Extra)
		return next
	}

	var cfg deriveConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	name := l.opts.Name
	if cfg.name != nil {
		name = *cfg.name
	}
	pre := l.opts.Preprocessors
	if cfg.preprocessors != nil {
		pre = *cfg.preprocessors
	}
	proc := l.opts.Processors
	if cfg.processors != nil {
		proc = *cfg.processors
	}
	extra := l.opts.Extra
	if cfg.extra != nil {
		extra = *cfg.extra
	}
	next.opts = core.NewOptions(name, pre, proc, extra)
	return next
}

// Bind returns a Logger whose extra fields are the union of the
// receiver's and the given key-value pairs; given pairs win on
// collision. The receiver is not modified.
func (l *Logger) Bind(kv ...any) *Logger {
	extra := make(map[string]any, len(l.opts.Extra)+len(kv)/2)
	for k, v := range l.opts.Extra {
		extra[k] = v
	}
	for k, v := range kwargsFromKV(kv) {
		extra[k] = v
	}
	return &Logger{
		core: l.core,
		opts: core.NewOptions(l.opts.Name, l.opts.Preprocessors, l.opts.Processors, extra),
		ctx:  l.ctx,
	}
}

// Unbind returns a Logger with the given keys removed from its extra
// fields. Missing keys are a no-op.
func (l *Logger) Unbind(keys ...string) *Logger {
	extra := make(map[string]any, len(l.opts.Extra))
	for k, v := range l.opts.Extra {
		extra[k] = v
	}
	for _, k := range keys {
		delete(extra, k)
	}
	return &Logger{
		core: l.core,
		opts: core.NewOptions(l.opts.Name, l.opts.Preprocessors, l.opts.Processors, extra),
		ctx:  l.ctx,
	}
}

// WithContext returns a Logger whose records snapshot the ambient
// fields carried by ctx (see Context).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{core: l.core, opts: l.opts, ctx: ctx}
}

// Debug logs at DEBUG level with slog-style key-value pairs.
func (l *Logger) Debug(msg string, kv ...any) {
	l.log(core.DebugLevel, msg, nil, kv)
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, kv ...any) {
	l.log(core.InfoLevel, msg, nil, kv)
}

// Warning logs at WARNING level.
func (l *Logger) Warning(msg string, kv ...any) {
	l.log(core.WarningLevel, msg, nil, kv)
}

// Warn is an alias for Warning.
func (l *Logger) Warn(msg string, kv ...any) {
	l.log(core.WarningLevel, msg, nil, kv)
}

// Error logs at ERROR level.
func (l *Logger) Error(msg string, kv ...any) {
	l.log(core.ErrorLevel, msg, nil, kv)
}

// Critical logs at CRITICAL level.
func (l *Logger) Critical(msg string, kv ...any) {
	l.log(core.CriticalLevel, msg, nil, kv)
}

// Exception logs at ERROR level and requests capture of the error
// currently being handled: the ExcInfo preprocessor turns an "err"
// key-value pair plus the call stack into the record's Exception.
func (l *Logger) Exception(msg string, kv ...any) {
	if !l.enabled(core.ErrorLevel) {
		return
	}
	kwargs := kwargsFromKV(kv)
	if kwargs == nil {
		kwargs = make(map[string]any, 1)
	}
	kwargs["exc_info"] = true
	l.emit(core.ErrorLevel, msg, nil, kwargs)
}

// Log logs at an arbitrary level given by number, name, short code or
// Level. An unknown level is a synchronous configuration error.
func (l *Logger) Log(level any, msg string, kv ...any) error {
	lvl, err := l.core.Level(level)
	if err != nil {
		return err
	}
	l.log(lvl, msg, nil, kv)
	return nil
}

// Debugf logs at DEBUG level with deferred printf formatting: the args
// travel with the record and are rendered on the worker, not at the
// call site.
func (l *Logger) Debugf(format string, args ...any) {
	l.log(core.DebugLevel, format, args, nil)
}

// Infof logs at INFO level with deferred printf formatting.
func (l *Logger) Infof(format string, args ...any) {
	l.log(core.InfoLevel, format, args, nil)
}

// Warningf logs at WARNING level with deferred printf formatting.
func (l *Logger) Warningf(format string, args ...any) {
	l.log(core.WarningLevel, format, args, nil)
}

// Errorf logs at ERROR level with deferred printf formatting.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(core.ErrorLevel, format, args, nil)
}

// Criticalf logs at CRITICAL level with deferred printf formatting.
func (l *Logger) Criticalf(format string, args ...any) {
	l.log(core.CriticalLevel, format, args, nil)
}

// enabled is the fast exit: a call below the lowest handler level must
// stay free of per-field work and allocation.
func (l *Logger) enabled(level core.Level) bool {
	return int64(level.No) >= l.core.MinLevelNo()
}

// log gates on the level, then builds the record and feeds the
// pipeline. The kv pairs are converted only after the gate so a
// filtered-out call never pays for them.
func (l *Logger) log(level core.Level, msg string, args, kv []any) *core.Record {
	if !l.enabled(level) {
		return nil
	}
	return l.emit(level, msg, args, kwargsFromKV(kv))
}

// emit runs on the caller's goroutine: record construction, the
// preprocessor chains, then the enqueue.
func (l *Logger) emit(level core.Level, msg string, args []any, kwargs map[string]any) *core.Record {
	c := l.core
	copts := c.Options()
	extra := make(map[string]any, len(copts.Extra)+len(l.opts.Extra))
	for k, v := range copts.Extra {
		extra[k] = v
	}
	for k, v := range l.opts.Extra {
		extra[k] = v
	}

	r := &core.Record{
		Level:       level,
		Msg:         msg,
		Message:     msg,
		Name:        l.opts.Name,
		Time:        xclock.Now().UTC(),
		ProcessID:   processID,
		ProcessName: processName,
		Context:     snapshotContext(l.ctx),
		Extra:       extra,
		Args:        args,
		Kwargs:      kwargs,
	}

	for _, p := range l.opts.Preprocessors {
		if p(r) == core.Drop {
			return nil
		}
	}
	for _, p := range copts.Preprocessors {
		if p(r) == core.Drop {
			return nil
		}
	}

	c.Log(r, l.opts.Processors)
	return r
}

// kwargsFromKV converts slog-style alternating key-value pairs into a
// map. Non-string keys are stringified; a trailing key without a value
// lands under badKey.
func kwargsFromKV(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	m := make(map[string]any, (len(kv)+1)/2)
	i := 0
	for ; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		m[k] = kv[i+1]
	}
	if i < len(kv) {
		m[badKey] = kv[i]
	}
	return m
}
