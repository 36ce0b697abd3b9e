// Package batchread executes the address clusterer's batches against a
// driver in parallel, degrading gracefully to per-address reads when a
// batch read fails outright.
package batchread

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orviska/fuzzyscan/internal/bufpool"
	"github.com/orviska/fuzzyscan/internal/cluster"
	"github.com/orviska/fuzzyscan/internal/constants"
	"github.com/orviska/fuzzyscan/internal/logging"
	"github.com/orviska/fuzzyscan/scantypes"
)

// Pair couples an original candidate item with the bytes currently at its
// address.
type Pair struct {
	Item  scantypes.Item
	Bytes []byte
}

// Options carries the optional counters, progress callback, and
// cancellation hook threaded through every batch. All fields are optional;
// nil disables the corresponding behavior.
type Options struct {
	Processed  *atomic.Int64
	TotalFound *atomic.Int64
	ProgressFn func(processedSoFar, foundSoFar int64)
	CancelFn   func() bool

	// ObserveBatch, when set, receives telemetry for every batch read
	// attempted; success is false when the batch fell back to per-address
	// reads.
	ObserveBatch func(bytes uint64, latencyNs uint64, success bool)

	// ObserveFallback, when set, receives telemetry for every per-address
	// read attempted after a batch failure.
	ObserveFallback func(latencyNs uint64, success bool)
}

// Read runs batches (as produced by cluster.Cluster) against driver in
// parallel. Output order is the parallel traversal order, not the input
// order. Once CancelFn reports true, in-flight batches complete normally
// but no new batch is started.
func Read(batches []cluster.Batch, items []scantypes.Item, driver scantypes.Driver, opts Options) []Pair {
	if len(batches) == 0 {
		return nil
	}

	var cancelled atomic.Bool
	var mu sync.Mutex
	var results []Pair
	var batchesDone atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, b := range batches {
		batch := b
		g.Go(func() error {
			if cancelled.Load() {
				return nil
			}
			if opts.CancelFn != nil && opts.CancelFn() {
				cancelled.Store(true)
				return nil
			}

			pairs := readBatch(batch, items, driver, opts)

			if opts.Processed != nil {
				opts.Processed.Add(int64(len(batch.Items)))
			}

			mu.Lock()
			results = append(results, pairs...)
			mu.Unlock()

			n := batchesDone.Add(1)
			if opts.ProgressFn != nil && n%int64(constants.ProgressUpdateBatchSize) == 0 {
				processedSoFar := int64(0)
				if opts.Processed != nil {
					processedSoFar = opts.Processed.Load()
				}
				foundSoFar := int64(0)
				if opts.TotalFound != nil {
					foundSoFar = opts.TotalFound.Load()
				}
				opts.ProgressFn(processedSoFar, foundSoFar)
			}
			return nil
		})
	}
	_ = g.Wait() // readBatch never errors

	return results
}

// readBatch performs one batch's read and, on failure, falls back to a
// single-address read per item. Addresses that fail both the batch read
// and their fallback read are silently dropped from the output.
func readBatch(batch cluster.Batch, items []scantypes.Item, driver scantypes.Driver, opts Options) []Pair {
	buf := bufpool.GetBuffer(int(batch.TotalSize))
	defer bufpool.PutBuffer(buf)

	readStart := time.Now()
	err := driver.ReadMemory(batch.StartAddr, buf, nil)
	if opts.ObserveBatch != nil {
		opts.ObserveBatch(batch.TotalSize, uint64(time.Since(readStart).Nanoseconds()), err == nil)
	}

	if err == nil {
		pairs := make([]Pair, 0, len(batch.Items))
		for _, ref := range batch.Items {
			raw := make([]byte, ref.ValueSize)
			copy(raw, buf[ref.OffsetInBatch:ref.OffsetInBatch+ref.ValueSize])
			pairs = append(pairs, Pair{Item: items[ref.OriginalIndex], Bytes: raw})
		}
		return pairs
	}

	logging.Debug("refine batch read failed, falling back to per-address reads", "addr", batch.StartAddr, "bytes", batch.TotalSize, "error", err)
	pairs := make([]Pair, 0, len(batch.Items))
	for _, ref := range batch.Items {
		addr := batch.StartAddr + ref.OffsetInBatch
		single := make([]byte, ref.ValueSize)
		fallbackStart := time.Now()
		err := driver.ReadMemory(addr, single, nil)
		if opts.ObserveFallback != nil {
			opts.ObserveFallback(uint64(time.Since(fallbackStart).Nanoseconds()), err == nil)
		}
		if err == nil {
			pairs = append(pairs, Pair{Item: items[ref.OriginalIndex], Bytes: single})
		}
	}
	return pairs
}
