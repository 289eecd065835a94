// Package core implements the asynchronous record pipeline.
//
// A Core owns an unbounded FIFO command queue and exactly one worker
// goroutine that consumes it. Producers enqueue LOG commands (and
// configuration commands such as ADD_HANDLER or OPTIONS) without ever
// blocking; the worker is the only goroutine that touches the handler
// table and the shared Options, so the pipeline needs no locks on its
// hot path. Configuration calls gain synchronous semantics through an
// EVENT barrier: the call enqueues a command plus a barrier and waits
// (bounded by a timeout) until the worker has processed everything
// enqueued before it.
//
// The package also defines the data model shared across the module:
// Level and the level registry, Record, Options, the Processor contract
// and the Handler contract. Concrete handlers live in the handler
// package, formatters in the formatter package.
package core
