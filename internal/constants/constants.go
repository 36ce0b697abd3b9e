// Package constants centralizes tunables for the fuzzy scan engine.
package constants

import "time"

const (
	// DefaultChunkSize is the amount of address space read per driver call
	// during an initial scan.
	DefaultChunkSize = 4 * 1024 * 1024 // 4MiB

	// BatchMaxGap is the largest address gap (in bytes) between two
	// candidates that the clusterer will still merge into one read batch.
	// One page, so a single unmapped page between two hits doesn't force
	// an extra read.
	BatchMaxGap = 4096

	// BatchMaxSize is the largest total span a single read batch may cover.
	// Matches a conservative single read-syscall payload.
	BatchMaxSize = 64 * 1024

	// ProgressUpdateBatchSize controls how many refine batches elapse
	// between progress_fn callbacks. 1 means every batch reports.
	ProgressUpdateBatchSize = 1

	// ChannelSize is the fixed byte length of the progress channel layout.
	ChannelSize = 32
)

// DefaultPollInterval paces callers that poll the progress channel instead
// of reading it directly.
const DefaultPollInterval = 50 * time.Millisecond
