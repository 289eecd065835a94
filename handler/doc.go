// Package handler provides the built-in sinks for the record pipeline.
//
// Every handler implements core.Handler and receives its own copy of
// each record, already filtered by the handler's registered level.
// Handlers that hold resources implement Close, which the Core calls
// exactly once on removal or teardown.
//
// StreamHandler and FileHandler are the basic formatted sinks.
// FingersCrossedHandler buffers low-severity records and flushes the
// buffered history once a severe record arrives. AsyncHandler decouples
// a slow sink from the pipeline worker with a bounded queue and an
// overflow policy. MultiHandler fans one registration out to several
// sinks. WrapStandardHandler forwards records to any log/slog Handler.
// Adapters for zap and zerolog live in the zaphandler and
// zerologhandler subpackages.
package handler
