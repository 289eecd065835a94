// Package formatter defines how records are serialized into bytes.
//
// A Formatter returns the rendered record without a trailing
// terminator; stream handlers append exactly one terminator per record.
// SimpleFormatter and DefaultFormatter produce human-readable lines,
// JSONFormatter one JSON document per record. All three use a pooled
// bytes.Buffer so a log line costs a single allocation for the returned
// slice. Buffers larger than 64 KiB are not returned to the pool to
// keep one huge record from permanently inflating memory usage.
package formatter
