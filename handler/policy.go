package handler

import "sync/atomic"

// OverflowPolicy decides what AsyncHandler does with a record when its
// queue is full.
type OverflowPolicy int

const (
	// DropNewest drops the incoming record.
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the oldest queued record to make room.
	DropOldest
	// Block waits for space up to the configured timeout, then falls
	// back to a synchronous write.
	Block
)

// String returns the string representation of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DefaultLevelPolicy drops routine noise when the queue is full but
// blocks for ERROR and above.
func DefaultLevelPolicy() map[int]OverflowPolicy {
	return map[int]OverflowPolicy{
		10: DropNewest, // DEBUG
		20: DropNewest, // INFO
		30: DropNewest, // WARNING
		40: Block,      // ERROR
		50: Block,      // CRITICAL
	}
}

// Stats tracks AsyncHandler counters. All fields are updated and read
// atomically; a Stats value is safe to share.
type Stats struct {
	dropped   atomic.Uint64
	blocked   atomic.Uint64
	processed atomic.Uint64
}

// Dropped returns how many records were discarded by overflow policy.
func (s *Stats) Dropped() uint64 { return s.dropped.Load() }

// Blocked counts times the Block policy had to wait or fall back.
func (s *Stats) Blocked() uint64 { return s.blocked.Load() }

// Processed counts records delivered to the inner handler.
func (s *Stats) Processed() uint64 { return s.processed.Load() }
