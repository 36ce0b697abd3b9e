// Package progress implements the fixed 32-byte progress channel shared
// between a running scan and an external observer process: the scanner
// writes status/progress/counters, the observer writes only the
// cancellation flag.
package progress

import (
	"encoding/binary"
	"math/rand"
	"sync"
)

// Field offsets within the channel, all little-endian.
const (
	offStatus      = 0
	offProgress    = 4
	offRegionsDone = 8
	offFoundCount  = 12
	offHeartbeat   = 20
	offCancelFlag  = 24
	offErrorCode   = 28

	// MinLen is the smallest buffer Attach will accept.
	MinLen = 32
)

// Status is the scan lifecycle state published at offset 0.
type Status int32

const (
	StatusIdle Status = iota
	StatusSearching
	StatusCompleted
	StatusCancelled
	StatusError
)

// ErrorCode mirrors the scan engine's SearchErrorCode as a wire-stable
// integer, published at offset 28.
type ErrorCode int32

const (
	ErrNone ErrorCode = iota
	ErrNotInitialized
	ErrInvalidQuery
	ErrMemoryReadFailed
	ErrInternalError
	ErrAlreadySearching
)

// Channel is a lock-free-from-the-observer's-perspective progress buffer.
// Internally every field write is serialized by a mutex; because a Go
// mutex's Unlock establishes happens-before its next Lock, this gives every
// write made before a status transition the same release-before-store
// guarantee the layout's "release fence before status store" contract asks
// for, without needing a standalone fence primitive.
type Channel struct {
	mu  sync.Mutex
	buf []byte
}

// New returns a detached channel.
func New() *Channel {
	return &Channel{}
}

// Attach binds the channel to an externally-owned buffer. It fails (and
// leaves the channel detached) when buf is nil or shorter than MinLen. On
// success every scanner-owned field is zeroed; cancel_flag is preserved so
// a cancellation requested before attach is not lost.
func (c *Channel) Attach(buf []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf == nil || len(buf) < MinLen {
		return false
	}

	cancel := readI32(buf, offCancelFlag)
	for i := range buf {
		buf[i] = 0
	}
	writeI32(buf, offCancelFlag, cancel)

	c.buf = buf
	return true
}

// Detach unbinds the channel. Subsequent writes become no-ops.
func (c *Channel) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = nil
}

// WriteStatus publishes a new lifecycle status.
func (c *Channel) WriteStatus(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI32(c.buf, offStatus, int32(s))
}

// WriteProgress publishes a percentage, clamped into [0, 100].
func (c *Channel) WriteProgress(pct int) {
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI32(c.buf, offProgress, int32(pct))
}

// WriteRegionsDone publishes the regions-processed counter.
func (c *Channel) WriteRegionsDone(n int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI32(c.buf, offRegionsDone, n)
}

// WriteFoundCount publishes the running (or final) found-count.
func (c *Channel) WriteFoundCount(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI64(c.buf, offFoundCount, n)
}

// WriteErrorCode publishes the terminal error code.
func (c *Channel) WriteErrorCode(code ErrorCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI32(c.buf, offErrorCode, int32(code))
}

// UpdateProgress is a convenience triple write. It makes no atomicity
// guarantee across the three fields; an observer reading mid-call may see
// one or two of the new values. Callers that need a consistent snapshot
// should follow up with WriteStatus.
func (c *Channel) UpdateProgress(pct int, regionsDone int32, found int64) {
	c.WriteProgress(pct)
	c.WriteRegionsDone(regionsDone)
	c.WriteFoundCount(found)
}

// TickHeartbeat writes a fresh random value so an observer can detect
// liveness by polling for change.
func (c *Channel) TickHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI32(c.buf, offHeartbeat, rand.Int31())
}

// IsCancelRequested reports whether the observer has set cancel_flag.
func (c *Channel) IsCancelRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readI32(c.buf, offCancelFlag) != 0
}

// RequestCancel sets cancel_flag. In production this write belongs to the
// observer process; exposed here so tests can simulate one.
func (c *Channel) RequestCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI32(c.buf, offCancelFlag, 1)
}

// ClearCancelFlag resets cancel_flag to zero.
func (c *Channel) ClearCancelFlag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	writeI32(c.buf, offCancelFlag, 0)
}

// Snapshot is a point-in-time, non-atomic read of every field.
type Snapshot struct {
	Status      Status
	Progress    int32
	RegionsDone int32
	FoundCount  int64
	Heartbeat   int32
	CancelFlag  int32
	ErrorCode   ErrorCode
}

// Snapshot reads every field under the channel's lock. It is a convenience
// for tests and the demo CLI, not part of the wire contract itself.
func (c *Channel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Status:      Status(readI32(c.buf, offStatus)),
		Progress:    readI32(c.buf, offProgress),
		RegionsDone: readI32(c.buf, offRegionsDone),
		FoundCount:  readI64(c.buf, offFoundCount),
		Heartbeat:   readI32(c.buf, offHeartbeat),
		CancelFlag:  readI32(c.buf, offCancelFlag),
		ErrorCode:   ErrorCode(readI32(c.buf, offErrorCode)),
	}
}

// writeI32/writeI64/readI32/readI64 perform unaligned little-endian access
// with silent bounds checking: an out-of-range offset (including a nil or
// detached buffer) is a no-op/zero-read rather than a panic, matching the
// channel's "never abort on a bad write" contract.

func writeI32(buf []byte, offset int, v int32) {
	if buf == nil || offset < 0 || offset+4 > len(buf) {
		return
	}
	binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
}

func readI32(buf []byte, offset int) int32 {
	if buf == nil || offset < 0 || offset+4 > len(buf) {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(buf[offset:]))
}

func writeI64(buf []byte, offset int, v int64) {
	if buf == nil || offset < 0 || offset+8 > len(buf) {
		return
	}
	binary.LittleEndian.PutUint64(buf[offset:], uint64(v))
}

func readI64(buf []byte, offset int) int64 {
	if buf == nil || offset < 0 || offset+8 > len(buf) {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(buf[offset:]))
}
