package fuzzyscan

import (
	"sync/atomic"

	"github.com/orviska/fuzzyscan/internal/refine"
	"github.com/orviska/fuzzyscan/internal/scanner"
	"github.com/orviska/fuzzyscan/progress"
	"github.com/orviska/fuzzyscan/resultset"
)

// ScanConfig configures an InitialScan call. A zero ChunkSize or PageSize
// falls back to the engine's default chunk size and a 4 KiB page size;
// DefaultScanConfig fills in the same values plus a no-op Observer.
type ScanConfig struct {
	ChunkSize uint64
	PageSize  int

	// Channel, if set, receives status/progress/found-count updates across
	// the scan and is consulted for cancellation when CancelFn is nil.
	Channel *progress.Channel

	// CancelFn overrides Channel's cancellation check when set.
	CancelFn func() bool

	// Observer, if set, receives per-chunk read telemetry.
	Observer Observer
}

// DefaultScanConfig returns a ScanConfig using the engine's default chunk
// size and a 4 KiB page size, with no progress channel or observer attached.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		ChunkSize: uint64(DefaultChunkSize),
		PageSize:  4096,
		Observer:  NoOpObserver{},
	}
}

func (c ScanConfig) cancelFn() func() bool {
	if c.CancelFn != nil {
		return c.CancelFn
	}
	if c.Channel != nil {
		return c.Channel.IsCancelRequested
	}
	return nil
}

// RefineConfig configures a Refine call.
type RefineConfig struct {
	Channel  *progress.Channel
	CancelFn func() bool
	Observer Observer
}

// DefaultRefineConfig returns a RefineConfig with no progress channel,
// cancellation hook, or observer attached.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{Observer: NoOpObserver{}}
}

func (c RefineConfig) cancelFn() func() bool {
	if c.CancelFn != nil {
		return c.CancelFn
	}
	if c.Channel != nil {
		return c.Channel.IsCancelRequested
	}
	return nil
}

// InitialScan streams [start, end) through driver, building the baseline
// candidate set. start >= end yields an empty set without touching driver.
// A nil driver is rejected as NotInitialized.
func InitialScan(driver Driver, valueType ValueType, start, end uint64, cfg ScanConfig) (*resultset.Set, error) {
	if driver == nil {
		err := NewError("InitialScan", ErrCodeNotInitialized, "driver is nil")
		publishError(cfg.Channel, err)
		return nil, err
	}

	if cfg.Channel != nil {
		cfg.Channel.WriteStatus(progress.StatusSearching)
	}

	var processed, totalFound atomic.Int64

	var progressFn func(processedBytes, chunksDone, found int64)
	if cfg.Channel != nil {
		ch := cfg.Channel
		var totalBytes int64
		if end > start {
			totalBytes = int64(end - start)
		}
		progressFn = func(processedBytes, chunksDone, found int64) {
			pct := 100
			if totalBytes > 0 {
				pct = int(processedBytes * 100 / totalBytes)
			}
			ch.UpdateProgress(pct, int32(chunksDone), found)
			ch.TickHeartbeat()
		}
	}

	var observeChunk func(bytes uint64, latencyNs uint64, success bool)
	if cfg.Observer != nil {
		observeChunk = cfg.Observer.ObserveChunkRead
	}

	set := scanner.InitialScan(driver, valueType, start, end, scanner.Options{
		ChunkSize:    cfg.ChunkSize,
		PageSize:     cfg.PageSize,
		Processed:    &processed,
		TotalFound:   &totalFound,
		ProgressFn:   progressFn,
		ObserveChunk: observeChunk,
		CancelFn:     cfg.cancelFn(),
	})

	if cfg.Observer != nil {
		cfg.Observer.ObserveCandidateSetSize(uint64(set.Len()))
	}

	if cfg.Channel != nil {
		cfg.Channel.WriteFoundCount(int64(set.Len()))
		cfg.Channel.WriteProgress(100)
		status := progress.StatusCompleted
		if fn := cfg.cancelFn(); fn != nil && fn() {
			status = progress.StatusCancelled
		}
		cfg.Channel.WriteStatus(status)
	}

	return set, nil
}

// publishError surfaces a terminal scan error through the channel: the
// error code is written before the Error status so an observer that sees
// the status transition also sees the code.
func publishError(ch *progress.Channel, err *Error) {
	if ch == nil {
		return
	}
	ch.WriteErrorCode(err.Code.WireCode())
	ch.WriteStatus(progress.StatusError)
}

// Refine narrows items down to those matching condition against driver's
// current memory contents. An empty items slice yields an empty set without
// issuing any reads. A nil driver is rejected as NotInitialized.
func Refine(driver Driver, items []Item, condition Condition, cfg RefineConfig) (*resultset.Set, error) {
	if driver == nil {
		err := NewError("Refine", ErrCodeNotInitialized, "driver is nil")
		publishError(cfg.Channel, err)
		return nil, err
	}

	if cfg.Channel != nil {
		cfg.Channel.WriteStatus(progress.StatusSearching)
	}

	var processed, totalFound atomic.Int64
	var progressFn func(int64, int64)
	if cfg.Channel != nil {
		ch := cfg.Channel
		total := int64(len(items))
		progressFn = func(processedSoFar, foundSoFar int64) {
			pct := 100
			if total > 0 {
				pct = int(processedSoFar * 100 / total)
			}
			ch.WriteProgress(pct)
			ch.WriteFoundCount(foundSoFar)
			ch.TickHeartbeat()
		}
	}

	var observeBatch func(bytes uint64, latencyNs uint64, success bool)
	var observeFallback func(latencyNs uint64, success bool)
	if cfg.Observer != nil {
		observeBatch = cfg.Observer.ObserveBatchRead
		observeFallback = cfg.Observer.ObserveFallbackRead
	}

	set := refine.Refine(items, condition, driver, refine.Options{
		Processed:       &processed,
		TotalFound:      &totalFound,
		ProgressFn:      progressFn,
		CancelFn:        cfg.cancelFn(),
		ObserveBatch:    observeBatch,
		ObserveFallback: observeFallback,
	})

	if cfg.Observer != nil {
		cfg.Observer.ObserveCandidateSetSize(uint64(set.Len()))
	}

	if cfg.Channel != nil {
		cfg.Channel.WriteFoundCount(int64(set.Len()))
		cfg.Channel.WriteProgress(100)
		status := progress.StatusCompleted
		if fn := cfg.cancelFn(); fn != nil && fn() {
			status = progress.StatusCancelled
		}
		cfg.Channel.WriteStatus(status)
	}

	return set, nil
}
