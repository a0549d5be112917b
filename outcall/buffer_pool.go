package outcall

import (
	"bytes"
	"io"
	"sync"
)

const (
	// initialBufferSize fits the default response size estimate with room
	// to grow; bytes.Buffer doubles capacity on demand.
	initialBufferSize = 4 * 1024

	// maxPooledBufferCap keeps buffers that grew past this out of the pool
	// so one oversized response does not pin memory for the life of the
	// process.
	maxPooledBufferCap = 4 * 1024 * 1024
)

// bufferPool recycles response body buffers across outcalls. Every round
// reads one body per queried provider; pooling keeps the steady-state
// allocation rate flat under fan-out load.
type bufferPool struct {
	pool sync.Pool
}

func newBufferPool() *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
			},
		},
	}
}

func (bp *bufferPool) get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (bp *bufferPool) put(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferCap {
		return
	}
	bp.pool.Put(buf)
}

// read drains r up to limit bytes through a pooled buffer and returns an
// independent copy of the bytes; the buffer itself goes back to the pool.
func (bp *bufferPool) read(r io.Reader, limit int64) ([]byte, error) {
	buf := bp.get()
	defer bp.put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(r, limit)); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
