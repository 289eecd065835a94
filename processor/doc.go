// Package processor provides the built-in preprocessors and processors
// for the record pipeline.
//
// Preprocessors run synchronously on the caller's goroutine before the
// record is enqueued; anything touching the call site (ExcInfo,
// CallerInfo) must run there. Processors run on the Core's worker after
// dequeue; expensive work (lazy resolution, message rendering) belongs
// there. Both share the core.Processor signature and signal suppression
// by returning core.Drop.
package processor
