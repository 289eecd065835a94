package formatter

import (
	"fmt"
	"sort"
	"time"

	"github.com/driftlog/driftlog/core"
)

// SimpleFormatter renders "<time> LEVEL    [name] message".
type SimpleFormatter struct {
	timeFormat string
}

// NewSimpleFormatter creates a simple formatter; an empty timeFormat
// uses RFC3339.
func NewSimpleFormatter(timeFormat string) *SimpleFormatter {
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	return &SimpleFormatter{timeFormat: timeFormat}
}

func (f *SimpleFormatter) Format(r *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	buf.Write(r.Time.AppendFormat(buf.AvailableBuffer(), f.timeFormat))
	buf.WriteByte(' ')
	writePaddedLevel(buf, r.Level.Name)
	buf.WriteString(" [")
	buf.WriteString(r.Name)
	buf.WriteString("] ")
	buf.WriteString(r.RenderMessage())

	return result(buf), nil
}

// DefaultFormatter renders "HH:MM:SS.micro LEVEL    [name] message"
// followed by the extra fields when present.
type DefaultFormatter struct{}

// NewDefaultFormatter creates the formatter used by the default
// handler.
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

func (f *DefaultFormatter) Format(r *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	buf.Write(r.Time.AppendFormat(buf.AvailableBuffer(), "15:04:05.000000"))
	buf.WriteByte(' ')
	writePaddedLevel(buf, r.Level.Name)
	buf.WriteString(" [")
	buf.WriteString(r.Name)
	buf.WriteString("] ")
	buf.WriteString(r.RenderMessage())

	if len(r.Extra) > 0 {
		buf.WriteByte(' ')
		writeExtra(buf, r.Extra)
	}

	return result(buf), nil
}

// writePaddedLevel writes the level name left-aligned in 8 columns,
// so messages line up across levels.
func writePaddedLevel(buf interface{ WriteString(string) (int, error) }, name string) {
	buf.WriteString(name)
	for i := len(name); i < 8; i++ {
		buf.WriteString(" ")
	}
}

// writeExtra renders extra fields as k=v pairs in key order, resolving
// lazy values.
func writeExtra(buf interface{ WriteString(string) (int, error) }, extra map[string]any) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(k)
		buf.WriteString("=")
		buf.WriteString(fmt.Sprint(core.ResolveValue(extra[k])))
	}
}
