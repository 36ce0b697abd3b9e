// Package extractor implements the page-parallel extraction step that turns
// one chunk buffer plus its page-success bitmap into baseline candidate
// items.
package extractor

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/orviska/fuzzyscan/scantypes"
)

// Extract produces every aligned item within the successful pages of
// buffer that also falls inside [regionStart, regionEnd). Pages marked
// unsuccessful in pageStatus are skipped entirely. Output order is the
// parallel page-traversal order, not address order; callers insert into an
// ordered set to get ascending-address iteration.
func Extract(
	buffer []byte,
	bufferAddr uint64,
	regionStart, regionEnd uint64,
	valueType scantypes.ValueType,
	pageStatus *scantypes.PageStatusBitmap,
) []scantypes.Item {
	elementSize := uint64(valueType.Size())
	if elementSize == 0 || len(buffer) == 0 {
		return nil
	}

	searchStart := maxU64(bufferAddr, regionStart)
	bufferEnd := bufferAddr + uint64(len(buffer))
	searchEnd := minU64(bufferEnd, regionEnd)
	if searchStart >= searchEnd {
		return nil
	}

	pageSize := uint64(pageStatus.PageSize())
	numPages := pageStatus.NumPages()
	perPage := make([][]scantypes.Item, numPages)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < numPages; i++ {
		if !pageStatus.IsPageSuccess(i) {
			continue
		}
		pageIdx := i
		g.Go(func() error {
			perPage[pageIdx] = extractPage(
				buffer, bufferAddr, uint64(pageIdx), pageSize,
				searchStart, searchEnd, elementSize, valueType,
			)
			return nil
		})
	}
	_ = g.Wait() // extractPage never errors; Wait only awaits completion

	total := 0
	for _, items := range perPage {
		total += len(items)
	}
	out := make([]scantypes.Item, 0, total)
	for _, items := range perPage {
		out = append(out, items...)
	}
	return out
}

// extractPage decodes every aligned element of one page that falls within
// [searchStart, searchEnd).
func extractPage(
	buffer []byte,
	bufferAddr uint64,
	pageIdx uint64,
	pageSize uint64,
	searchStart, searchEnd uint64,
	elementSize uint64,
	valueType scantypes.ValueType,
) []scantypes.Item {
	pageLo := bufferAddr + pageIdx*pageSize
	pageHi := pageLo + pageSize

	elemLo := maxU64(pageLo, searchStart)
	elemHi := minU64(pageHi, searchEnd)
	if elemLo >= elemHi {
		return nil
	}

	if rem := elemLo % elementSize; rem != 0 {
		elemLo += elementSize - rem
	}

	var items []scantypes.Item
	for elemLo+elementSize <= elemHi {
		offset := elemLo - bufferAddr
		if offset+elementSize > uint64(len(buffer)) {
			break
		}
		raw := buffer[offset : offset+elementSize]
		items = append(items, scantypes.NewItem(elemLo, raw, valueType))
		elemLo += elementSize
	}
	return items
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
