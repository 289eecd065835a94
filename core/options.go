package core

// Action is the result of a preprocessor or processor stage. This is
// the single drop-signal convention used throughout the module.
type Action int

const (
	// Continue passes the record on to the next stage.
	Continue Action = iota
	// Drop suppresses the record and stops the chain.
	Drop
)

// Processor transforms or filters a record. Processors run on the
// worker goroutine after dequeue; the same signature is used for
// preprocessors, which run synchronously on the caller's goroutine
// before the record is enqueued.
type Processor func(*Record) Action

// Options groups the per-logger (and the core-wide) configuration that
// shapes every record: the channel name, the preprocessor and processor
// chains, and extra fields merged into each record. Options values are
// treated as immutable once constructed; derivation always builds a new
// value.
type Options struct {
	Name          string
	Preprocessors []Processor
	Processors    []Processor
	Extra         map[string]any
}

// NewOptions copies its slice and map arguments so later caller
// mutations cannot leak into a live Options value.
func NewOptions(name string, preprocessors, processors []Processor, extra map[string]any) Options {
	return Options{
		Name:          name,
		Preprocessors: append([]Processor(nil), preprocessors...),
		Processors:    append([]Processor(nil), processors...),
		Extra:         copyMap(extra),
	}
}
