package formatter

import (
	"bytes"
	"sync"

	"github.com/driftlog/driftlog/core"
)

// Formatter renders one record into bytes, without a terminator.
type Formatter interface {
	Format(r *core.Record) ([]byte, error)
}

// Func adapts a plain function to the Formatter interface.
type Func func(r *core.Record) ([]byte, error)

func (f Func) Format(r *core.Record) ([]byte, error) { return f(r) }

var bufferPool = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 {
		return
	}
	bufferPool.Put(buf)
}

// result detaches the buffer content so the buffer can be pooled.
func result(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}
