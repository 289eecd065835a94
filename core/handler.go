package core

import "fmt"

// Handler is a sink consuming finalized records. Each Handle call
// receives a copy owned by the handler for the duration of the call.
// Handlers that hold resources may additionally implement
// `Close() error`; the worker calls it exactly once when the handler is
// removed or the Core shuts down.
type Handler interface {
	Handle(*Record) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(*Record) error

func (f HandlerFunc) Handle(r *Record) error { return f(r) }

// HandlerRecord is one registered sink: a unique name, the minimum
// level it accepts, its error-reporting policy and the handler itself.
type HandlerRecord struct {
	Name        string
	Level       Level
	PrintErrors bool
	Handler     Handler
}

func (hr HandlerRecord) String() string {
	return fmt.Sprintf("HandlerRecord(name=%q, level=%s)", hr.Name, hr.Level)
}
