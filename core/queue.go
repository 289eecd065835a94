package core

import "sync"

type commandKind int

const (
	cmdLog commandKind = iota
	cmdAddHandler
	cmdRemoveHandler
	cmdOptions
	cmdEvent
	cmdStop
)

// command is one queue entry. Only the fields relevant to its kind are
// set.
type command struct {
	kind       commandKind
	record     *Record
	processors []Processor   // per-call processors for cmdLog
	handler    HandlerRecord // cmdAddHandler
	name       string        // cmdRemoveHandler; empty removes all
	options    Options       // cmdOptions
	done       chan struct{} // cmdEvent barrier, closed by the worker
}

// commandQueue is an unbounded multi-producer single-consumer FIFO.
// Producers never block on put; the queue grows as needed. The consumer
// blocks on get until a command arrives. Two slices swap roles so that
// put and get each run in amortized constant time.
type commandQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	in   []command
	out  []command
}

func newCommandQueue() *commandQueue {
	q := &commandQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *commandQueue) put(c command) {
	q.mu.Lock()
	q.in = append(q.in, c)
	q.mu.Unlock()
	q.cond.Signal()
}

// get blocks until a command is available and returns it.
func (q *commandQueue) get() command {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.out) == 0 {
		if len(q.in) > 0 {
			q.in, q.out = q.out[:0], q.in
			break
		}
		q.cond.Wait()
	}
	c := q.out[0]
	q.out[0] = command{} // release references
	q.out = q.out[1:]
	return c
}

// len reports the number of queued commands, for tests.
func (q *commandQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.in) + len(q.out)
}
