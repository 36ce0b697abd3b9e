// Package refine implements the glue algorithm that narrows a candidate set
// against a relational condition: cluster addresses into read batches, read
// them, filter survivors, and rebuild an ordered set.
package refine

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/orviska/fuzzyscan/internal/batchread"
	"github.com/orviska/fuzzyscan/internal/cluster"
	"github.com/orviska/fuzzyscan/internal/logging"
	"github.com/orviska/fuzzyscan/resultset"
	"github.com/orviska/fuzzyscan/scantypes"
)

// Options carries the optional counters, progress callback, and
// cancellation hook threaded through clustering, batched reads, and the
// survivor filter.
type Options struct {
	Processed  *atomic.Int64
	TotalFound *atomic.Int64
	ProgressFn func(processedSoFar, foundSoFar int64)
	CancelFn   func() bool

	// ObserveBatch and ObserveFallback are forwarded to the batched reader.
	ObserveBatch    func(bytes uint64, latencyNs uint64, success bool)
	ObserveFallback func(latencyNs uint64, success bool)
}

// Refine narrows items down to those matching condition against their
// current in-process values, read via driver. An empty input yields an
// empty result without issuing any reads.
func Refine(items []scantypes.Item, condition scantypes.Condition, driver scantypes.Driver, opts Options) *resultset.Set {
	set := resultset.New()
	if len(items) == 0 {
		return set
	}

	batches := cluster.Cluster(items)
	avgPerBatch := float64(len(items)) / float64(len(batches))
	logging.Debug("refine starting", "input", len(items), "batches", len(batches), "avg_items_per_batch", avgPerBatch)

	pairs := batchread.Read(batches, items, driver, batchread.Options{
		Processed:       opts.Processed,
		TotalFound:      opts.TotalFound,
		ProgressFn:      opts.ProgressFn,
		CancelFn:        opts.CancelFn,
		ObserveBatch:    opts.ObserveBatch,
		ObserveFallback: opts.ObserveFallback,
	})

	survivors := filterParallel(pairs, condition, opts.TotalFound, opts.CancelFn)
	set.InsertAll(survivors)

	// The authoritative found-count at completion is the survivor count;
	// this overwrites the running total maintained during the filter.
	if opts.TotalFound != nil {
		opts.TotalFound.Store(int64(set.Len()))
	}
	if opts.ProgressFn != nil {
		opts.ProgressFn(int64(len(items)), int64(set.Len()))
	}

	logging.Debug("refine complete", "input", len(items), "survivors", set.Len())
	return set
}

// filterParallel tests every pair against condition across worker shards,
// incrementing totalFound per survivor as it is found (for responsive
// progress display) rather than only once at the end. Cancellation follows
// the batched reader's pattern: a shared flag checked before each shard
// starts, so shards already running complete normally while the rest are
// skipped.
func filterParallel(pairs []batchread.Pair, condition scantypes.Condition, totalFound *atomic.Int64, cancelFn func() bool) []scantypes.Item {
	if len(pairs) == 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(pairs) {
		workers = len(pairs)
	}
	chunkSize := (len(pairs) + workers - 1) / workers

	var cancelled atomic.Bool
	shardResults := make([][]scantypes.Item, workers)
	g := new(errgroup.Group)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= len(pairs) {
			break
		}
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		shard := w
		lo, hi := start, end
		g.Go(func() error {
			if cancelled.Load() {
				return nil
			}
			if cancelFn != nil && cancelFn() {
				cancelled.Store(true)
				return nil
			}
			var local []scantypes.Item
			for _, p := range pairs[lo:hi] {
				if p.Item.MatchesCondition(p.Bytes, condition) {
					if totalFound != nil {
						totalFound.Add(1)
					}
					local = append(local, p.Item.WithValue(p.Bytes))
				}
			}
			shardResults[shard] = local
			return nil
		})
	}
	_ = g.Wait() // the filter predicate never errors

	var out []scantypes.Item
	for _, r := range shardResults {
		out = append(out, r...)
	}
	return out
}
