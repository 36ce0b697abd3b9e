// Package cluster groups an already address-sorted candidate list into
// contiguous read batches, amortizing the per-read overhead a driver pays
// for each call.
package cluster

import (
	"github.com/orviska/fuzzyscan/internal/constants"
	"github.com/orviska/fuzzyscan/scantypes"
)

const (
	batchMaxGap  = uint64(constants.BatchMaxGap)
	batchMaxSize = uint64(constants.BatchMaxSize)
)

// ItemRef locates one original item within a Batch's read buffer.
type ItemRef struct {
	OffsetInBatch uint64
	OriginalIndex int
	ValueSize     uint64
}

// Batch is a contiguous read spanning one or more candidate addresses.
// Invariants: StartAddr equals the first item's address, TotalSize equals
// the last item's end offset minus StartAddr, and Items is sorted by
// address (inherited from the input order).
type Batch struct {
	StartAddr uint64
	TotalSize uint64
	Items     []ItemRef
}

// Cluster groups items (already sorted by address ascending) into batches.
// Two adjacent items merge into the same batch when the gap between them
// is at most BATCH_MAX_GAP and the resulting batch would not exceed
// BATCH_MAX_SIZE; otherwise the current batch is sealed and a new one
// starts.
func Cluster(items []scantypes.Item) []Batch {
	if len(items) == 0 {
		return nil
	}

	var batches []Batch
	var current *Batch

	for i, item := range items {
		size := uint64(item.Type.Size())

		if current == nil {
			current = &Batch{
				StartAddr: item.Address,
				TotalSize: size,
				Items:     []ItemRef{{OffsetInBatch: 0, OriginalIndex: i, ValueSize: size}},
			}
			continue
		}

		batchEnd := current.StartAddr + current.TotalSize
		gap := saturatingSub(item.Address, batchEnd)
		newTotal := (item.Address + size) - current.StartAddr

		if gap <= batchMaxGap && newTotal <= batchMaxSize {
			current.TotalSize = newTotal
			current.Items = append(current.Items, ItemRef{
				OffsetInBatch: item.Address - current.StartAddr,
				OriginalIndex: i,
				ValueSize:     size,
			})
			continue
		}

		batches = append(batches, *current)
		current = &Batch{
			StartAddr: item.Address,
			TotalSize: size,
			Items:     []ItemRef{{OffsetInBatch: 0, OriginalIndex: i, ValueSize: size}},
		}
	}

	batches = append(batches, *current)
	return batches
}

func saturatingSub(a, b uint64) uint64 {
	if a <= b {
		return 0
	}
	return a - b
}
