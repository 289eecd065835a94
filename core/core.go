package core

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/driftlog/driftlog/config"
)

// noHandlerLevel is the minimum-handler-level sentinel while no handler
// is registered. Every log call compares against it and bails out, so
// an unconfigured Core is near-free.
const noHandlerLevel = int64(math.MaxInt64)

// Config holds construction options for a Core.
type Config struct {
	// ErrorOutput receives handler diagnostics (default: os.Stderr).
	ErrorOutput io.Writer
	// WaitTimeout bounds barrier waits (default: config.WaitTimeout()).
	WaitTimeout time.Duration
}

// Core is the pipeline engine. It owns the level registry, the handler
// table, the shared Options, the command queue and the single worker
// goroutine consuming it.
//
// Handler state (handlers, order) is touched only by the worker; shared
// state read by producers (options, minLevelNo) is published atomically
// by the worker. The queue is the only structure both sides touch.
type Core struct {
	levels      *levels
	queue       *commandQueue
	options     atomic.Pointer[Options]
	minLevelNo  atomic.Int64
	numHandlers atomic.Int32
	errOutput   io.Writer
	waitTimeout time.Duration
	done        chan struct{}

	// worker-owned
	handlers map[string]HandlerRecord
	order    []string
}

// New creates a Core with default configuration and starts its worker.
func New() *Core {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Core and starts its worker goroutine. The
// Core must be torn down with Close; it must not be used afterwards.
func NewWithConfig(cfg Config) *Core {
	if cfg.ErrorOutput == nil {
		cfg.ErrorOutput = os.Stderr
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = config.WaitTimeout()
	}
	c := &Core{
		levels:      newLevels(),
		queue:       newCommandQueue(),
		errOutput:   cfg.ErrorOutput,
		waitTimeout: cfg.WaitTimeout,
		done:        make(chan struct{}),
		handlers:    make(map[string]HandlerRecord),
	}
	opts := NewOptions("CORE", nil, nil, nil)
	c.options.Store(&opts)
	c.minLevelNo.Store(noHandlerLevel)
	go c.worker()
	return c
}

// Options returns the current core-wide options. The value is immutable.
func (c *Core) Options() Options {
	return *c.options.Load()
}

// MinLevelNo is the lowest severity any registered handler accepts.
// Log calls below it skip record construction entirely.
func (c *Core) MinLevelNo() int64 {
	return c.minLevelNo.Load()
}

// Level resolves a level given by number, name, short code or Level.
func (c *Core) Level(key any) (Level, error) {
	return c.levels.get(key)
}

// RegisterLevel adds a custom level to the registry.
func (c *Core) RegisterLevel(no int, name string) (Level, error) {
	return c.levels.register(no, name)
}

// Log enqueues a record together with its per-call processors. It never
// blocks.
func (c *Core) Log(r *Record, processors []Processor) {
	c.queue.put(command{kind: cmdLog, record: r, processors: processors})
}

// HasHandlers reports whether any handler is currently registered.
func (c *Core) HasHandlers() bool {
	return c.numHandlers.Load() > 0
}

// IsAlive reports whether the worker is still running.
func (c *Core) IsAlive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// WaitForProcessed blocks until every command enqueued before this call
// has been processed, the timeout elapses, or the worker has stopped.
// A timeout is not an error; the caller simply may not yet observe the
// effect.
func (c *Core) WaitForProcessed(timeout time.Duration) {
	if timeout <= 0 {
		timeout = c.waitTimeout
	}
	done := make(chan struct{})
	c.queue.put(command{kind: cmdEvent, done: done})

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
	case <-c.done:
	}
}

// Add registers a handler and blocks until it is active. An empty name
// derives one from the handler's type. A nil level uses the configured
// default. Re-adding an existing name is a no-op (remove it first).
func (c *Core) Add(h Handler, name string, level any, printErrors bool) (HandlerRecord, error) {
	if h == nil {
		return HandlerRecord{}, errors.New("cannot log to a nil handler")
	}
	if name == "" {
		name = fmt.Sprintf("%T", h)
	}
	if level == nil {
		level = config.Level()
	}
	lvl, err := c.Level(level)
	if err != nil {
		return HandlerRecord{}, err
	}

	hr := HandlerRecord{Name: name, Level: lvl, PrintErrors: printErrors, Handler: h}
	c.queue.put(command{kind: cmdAddHandler, handler: hr})
	c.WaitForProcessed(0)
	return hr, nil
}

// Remove unregisters the named handler, closing it if it has a Close
// method. An empty name removes every handler. Remove blocks until the
// removal has been applied.
func (c *Core) Remove(name string) {
	c.queue.put(command{kind: cmdRemoveHandler, name: name})
	c.WaitForProcessed(0)
}

// ConfigureConfig describes a full reconfiguration of a Core.
type ConfigureConfig struct {
	// Handlers replaces the handler set when non-nil. A nil slice keeps
	// the registered handlers; an empty non-nil slice removes them all.
	Handlers []HandlerSpec
	// Extra, Preprocessors and Processors become the new core options.
	Extra         map[string]any
	Preprocessors []Processor
	Processors    []Processor
}

// HandlerSpec is one handler registration within ConfigureConfig.
type HandlerSpec struct {
	Handler     Handler
	Name        string
	Level       any
	PrintErrors bool
}

// Configure atomically (from the worker's point of view) replaces the
// core options and, optionally, the handler set. It returns the handler
// records that were added and blocks until the configuration is active.
func (c *Core) Configure(cfg ConfigureConfig) ([]HandlerRecord, error) {
	if cfg.Handlers != nil {
		c.Remove("")
	}

	opts := NewOptions("CORE", cfg.Preprocessors, cfg.Processors, cfg.Extra)
	c.queue.put(command{kind: cmdOptions, options: opts})

	var added []HandlerRecord
	for _, spec := range cfg.Handlers {
		hr, err := c.Add(spec.Handler, spec.Name, spec.Level, spec.PrintErrors)
		if err != nil {
			return added, err
		}
		added = append(added, hr)
	}
	if len(added) == 0 {
		c.WaitForProcessed(0)
	}
	return added, nil
}

// Stop asks the worker to exit after the commands already queued ahead
// of it. Commands enqueued after Stop are abandoned.
func (c *Core) Stop() {
	c.queue.put(command{kind: cmdStop})
}

// Join blocks until the worker goroutine has exited.
func (c *Core) Join() {
	<-c.done
}

// Close drains pending work, removes (and closes) all handlers, stops
// the worker and waits for it to exit. The Core must not be used after
// Close.
func (c *Core) Close() {
	if !c.IsAlive() {
		return
	}
	c.WaitForProcessed(0)
	c.Remove("")
	c.Stop()
	c.Join()
}

// worker is the single consumer of the command queue and the only
// writer of handler and options state.
func (c *Core) worker() {
	defer close(c.done)

	for {
		cmd := c.queue.get()

		switch cmd.kind {
		case cmdLog:
			c.processLog(cmd.record, cmd.processors)

		case cmdStop:
			return

		case cmdAddHandler:
			hr := cmd.handler
			if _, exists := c.handlers[hr.Name]; !exists {
				c.handlers[hr.Name] = hr
				c.order = append(c.order, hr.Name)
				c.numHandlers.Store(int32(len(c.handlers)))
				if int64(hr.Level.No) < c.minLevelNo.Load() {
					c.minLevelNo.Store(int64(hr.Level.No))
				}
			}

		case cmdRemoveHandler:
			c.removeHandlers(cmd.name)

		case cmdOptions:
			opts := cmd.options
			c.options.Store(&opts)

		case cmdEvent:
			close(cmd.done)
		}
	}
}

// processLog runs the per-call processors followed by the core
// processors, then dispatches to every handler whose threshold the
// record satisfies, in registration order. A panicking processor is
// isolated and the chain continues; Drop stops it.
func (c *Core) processLog(r *Record, processors []Processor) {
	for _, p := range processors {
		if c.runProcessor(p, r) == Drop {
			return
		}
	}
	for _, p := range c.options.Load().Processors {
		if c.runProcessor(p, r) == Drop {
			return
		}
	}

	for _, name := range c.order {
		hr := c.handlers[name]
		if r.Level.No >= hr.Level.No {
			c.dispatch(hr, r)
		}
	}
}

func (c *Core) runProcessor(p Processor, r *Record) (act Action) {
	defer func() {
		if recover() != nil {
			act = Continue
		}
	}()
	return p(r)
}

// dispatch hands a copy of the record to one handler, isolating panics
// and reporting failures without aborting dispatch to the remaining
// handlers.
func (c *Core) dispatch(hr HandlerRecord, r *Record) {
	rec := r.Copy()
	defer func() {
		if v := recover(); v != nil && hr.PrintErrors {
			c.printError(rec, hr.Name, fmt.Errorf("handler panic: %v", v))
		}
	}()
	if err := hr.Handler.Handle(rec); err != nil && hr.PrintErrors {
		c.printError(rec, hr.Name, err)
	}
}

// removeHandlers drops the named handler, or all of them when name is
// empty, closing each and recomputing the minimum handler level.
func (c *Core) removeHandlers(name string) {
	names := []string{name}
	if name == "" {
		names = append([]string(nil), c.order...)
	}

	var closeErr error
	for _, n := range names {
		hr, ok := c.handlers[n]
		if !ok {
			continue
		}
		delete(c.handlers, n)
		c.order = removeString(c.order, n)
		if closer, ok := hr.Handler.(interface{ Close() error }); ok {
			if err := c.closeHandler(closer); err != nil && hr.PrintErrors {
				closeErr = multierr.Append(closeErr, fmt.Errorf("handler %q: %w", n, err))
			}
		}
	}
	c.numHandlers.Store(int32(len(c.handlers)))

	min := noHandlerLevel
	for _, hr := range c.handlers {
		if int64(hr.Level.No) < min {
			min = int64(hr.Level.No)
		}
	}
	c.minLevelNo.Store(min)

	if closeErr != nil {
		c.printError(nil, name, closeErr)
	}
}

func (c *Core) closeHandler(closer interface{ Close() error }) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("close panic: %v", v)
		}
	}()
	return closer.Close()
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

// printError writes a handler diagnostic to the error output. It must
// never fail or log recursively, so every step is best-effort.
func (c *Core) printError(r *Record, handlerName string, cause error) {
	defer func() { _ = recover() }()
	if c.errOutput == nil {
		return
	}
	fmt.Fprintf(c.errOutput, "--- Logging error in handler %q ---\n", handlerName)
	if r != nil {
		fmt.Fprintf(c.errOutput, "Record was: %s\n", recordRepr(r))
	}
	fmt.Fprintf(c.errOutput, "%v\n--- End of logging error ---\n", cause)
}

func recordRepr(r *Record) (repr string) {
	defer func() {
		if recover() != nil {
			repr = "/!\\ unprintable record /!\\"
		}
	}()
	return r.String()
}
