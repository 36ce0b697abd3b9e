// Package bufpool provides size-bucketed byte buffer pooling so the initial
// scanner's chunk reads and the refiner's batch reads avoid a fresh
// allocation on every iteration.
package bufpool

import "sync"

// Bucket thresholds, sized for this domain's two hot paths: refine batch
// buffers (capped at BATCH_MAX_SIZE, 64KiB) and initial-scan chunk buffers
// (commonly a few MiB).
const (
	bucket4K   = 4 * 1024
	bucket64K  = 64 * 1024
	bucket1M   = 1024 * 1024
	bucket4M   = 4 * 1024 * 1024
)

var (
	pool4K  = newPool(bucket4K)
	pool64K = newPool(bucket64K)
	pool1M  = newPool(bucket1M)
	pool4M  = newPool(bucket4M)
)

func newPool(size int) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			buf := make([]byte, size)
			return &buf
		},
	}
}

// GetBuffer returns a []byte of at least size bytes, drawn from the
// smallest bucket that fits. Buffers larger than the largest bucket are
// allocated fresh and not pooled.
func GetBuffer(size int) []byte {
	var p *sync.Pool
	switch {
	case size <= bucket4K:
		p = pool4K
	case size <= bucket64K:
		p = pool64K
	case size <= bucket1M:
		p = pool1M
	case size <= bucket4M:
		p = pool4M
	default:
		return make([]byte, size)
	}

	bufPtr := p.Get().(*[]byte)
	buf := *bufPtr
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	return buf[:size]
}

// PutBuffer returns buf to the pool matching its capacity. Buffers that
// don't match a bucket's exact size (smaller, or larger than the biggest
// bucket) are simply dropped for the GC to collect.
func PutBuffer(buf []byte) {
	c := cap(buf)
	var p *sync.Pool
	switch c {
	case bucket4K:
		p = pool4K
	case bucket64K:
		p = pool64K
	case bucket1M:
		p = pool1M
	case bucket4M:
		p = pool4M
	default:
		return
	}
	buf = buf[:c]
	p.Put(&buf)
}
