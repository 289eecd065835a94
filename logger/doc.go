// Package logger is the public front-end of driftlog. Most users only
// need to import this package.
//
// A Logger is a lightweight, immutable handle bound to a core.Core.
// Derivation methods (With, Bind, Unbind, WithContext) return new
// Logger values and never mutate the receiver, so a Logger is safe to
// share across goroutines without locking. Many loggers share one
// Core; the Core outlives them all.
//
// A log call builds a Record, runs the logger's and the core's
// preprocessors synchronously, and enqueues the record for the Core's
// worker goroutine. The call never blocks: processing, filtering and
// handler dispatch happen asynchronously. Calls below the lowest level
// any handler accepts return before a Record is even constructed.
//
// The package initializes a default Core and Logger. When
// DRIFTLOG_AUTOINIT is unset or true, the profile named by
// DRIFTLOG_PROFILE is applied, so simple programs can log without any
// setup:
//
//	logger.Info("ready", "port", 8080)
//
// Per-request or per-task fields travel on a context.Context:
//
//	ctx = logger.Context(ctx, "request_id", id)
//	log := logger.Default().WithContext(ctx)
//
// Call Shutdown before process exit to drain the default pipeline.
package logger
