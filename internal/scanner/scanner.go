// Package scanner drives the chunk-by-chunk initial scan over a region,
// feeding each chunk to the page-parallel extractor and accumulating the
// baseline candidate set.
package scanner

import (
	"sync/atomic"
	"time"

	"github.com/orviska/fuzzyscan/internal/bufpool"
	"github.com/orviska/fuzzyscan/internal/constants"
	"github.com/orviska/fuzzyscan/internal/extractor"
	"github.com/orviska/fuzzyscan/internal/logging"
	"github.com/orviska/fuzzyscan/resultset"
	"github.com/orviska/fuzzyscan/scantypes"
)

// Options carries the optional counters, progress callback, and
// cancellation hook threaded through the scan loop.
type Options struct {
	ChunkSize uint64
	PageSize  int

	// Processed accumulates the number of region bytes seen, regardless of
	// whether a chunk's read succeeded.
	Processed *atomic.Int64

	// TotalFound is overwritten with the final candidate set size once the
	// scan completes or is cancelled.
	TotalFound *atomic.Int64

	// ProgressFn, when set, is called after every chunk with the bytes
	// processed so far, the number of chunks completed, and the running
	// candidate count.
	ProgressFn func(processedBytes, chunksDone, found int64)

	// ObserveChunk, when set, receives per-chunk read telemetry. A chunk
	// counts as successful only when at least one of its pages was readable.
	ObserveChunk func(bytes uint64, latencyNs uint64, success bool)

	CancelFn func() bool
}

// InitialScan streams [start, end) through chunk-sized reads, building an
// ordered candidate set of every aligned valueType occurrence in the
// region's successfully-read pages. start >= end yields an empty set
// without issuing any reads. A cancellation mid-scan returns the partial
// set accumulated so far; it is never treated as an error.
func InitialScan(driver scantypes.Driver, valueType scantypes.ValueType, start, end uint64, opts Options) *resultset.Set {
	set := resultset.New()
	if start >= end {
		return set
	}

	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = uint64(constants.DefaultChunkSize)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 4096
	}

	current := start &^ uint64(pageSize-1)
	var processedBytes, chunksDone int64
	var readsOK, readsFailed int

	for current < end {
		if opts.CancelFn != nil && opts.CancelFn() {
			logging.Debug("initial scan cancelled", "current", current, "found", set.Len())
			break
		}

		chunkEnd := current + chunkSize
		if chunkEnd > end {
			chunkEnd = end
		}
		chunkLen := chunkEnd - current

		buf := bufpool.GetBuffer(int(chunkLen))
		pageStatus := scantypes.NewPageStatusBitmap(int(chunkLen), current, pageSize)

		readStart := time.Now()
		err := driver.ReadMemory(current, buf, pageStatus)
		readLatency := time.Since(readStart)
		chunkOK := err == nil && pageStatus.SuccessCount() > 0
		if chunkOK {
			readsOK++
		} else {
			readsFailed++
		}

		switch {
		case chunkOK:
			items := extractor.Extract(buf, current, start, end, valueType, pageStatus)
			set.InsertAll(items)
		case err == nil:
			logging.Debug("initial scan chunk had zero successful pages", "addr", current)
		default:
			logging.Debug("initial scan chunk read failed", "addr", current, "error", err)
		}

		bufpool.PutBuffer(buf)

		if opts.ObserveChunk != nil {
			opts.ObserveChunk(chunkLen, uint64(readLatency.Nanoseconds()), chunkOK)
		}

		processedBytes += int64(chunkLen)
		chunksDone++
		if opts.Processed != nil {
			opts.Processed.Add(int64(chunkLen))
		}
		if opts.ProgressFn != nil {
			opts.ProgressFn(processedBytes, chunksDone, int64(set.Len()))
		}
		current = chunkEnd
	}

	if opts.TotalFound != nil {
		opts.TotalFound.Store(int64(set.Len()))
	}

	logging.Debug("initial scan complete", "region_bytes", end-start, "reads_ok", readsOK, "reads_failed", readsFailed, "found", set.Len())
	return set
}
