package fuzzyscan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orviska/fuzzyscan/progress"
)

func TestInitialScanRejectsNilDriver(t *testing.T) {
	_, err := InitialScan(nil, I32, 0x1000, 0x2000, DefaultScanConfig())
	require.Error(t, err)
	require.True(t, IsCode(err, ErrCodeNotInitialized))
}

func TestRefineRejectsNilDriver(t *testing.T) {
	_, err := Refine(nil, nil, ConditionUnchanged(), DefaultRefineConfig())
	require.Error(t, err)
	require.True(t, IsCode(err, ErrCodeNotInitialized))
}

// S1 — initial scan, single successful page.
func TestInitialScanEndToEndSinglePage(t *testing.T) {
	data := make([]byte, 0x1000)
	for i := 0; i+4 <= len(data); i += 4 {
		data[i] = 1
	}
	driver := NewMockDriver(0x1000, data)

	cfg := DefaultScanConfig()
	cfg.ChunkSize = 0x1000
	cfg.PageSize = 0x1000

	set, err := InitialScan(driver, I32, 0x1000, 0x2000, cfg)
	require.NoError(t, err)
	require.Equal(t, 1024, set.Len())

	items := set.Items()
	require.Equal(t, uint64(0x1000), items[0].Address)
	require.Equal(t, uint64(0x1FFC), items[len(items)-1].Address)
	for _, it := range items {
		require.Equal(t, 1.0, it.Value)
	}
}

// S2 — initial scan with a failed middle page.
func TestInitialScanEndToEndFailedMiddlePage(t *testing.T) {
	data := make([]byte, 0x3000)
	driver := NewMockDriver(0x10000, data).WithPageSize(0x1000)
	driver.MarkRangeUnreadable(0x11000, 0x12000)

	cfg := DefaultScanConfig()
	cfg.ChunkSize = 0x3000
	cfg.PageSize = 0x1000

	set, err := InitialScan(driver, I32, 0x10000, 0x13000, cfg)
	require.NoError(t, err)
	require.Equal(t, 2048, set.Len())
	set.ForEach(func(it Item) bool {
		require.False(t, it.Address >= 0x11000 && it.Address < 0x12000)
		return true
	})
}

func TestInitialScanInvalidRangeIsEmpty(t *testing.T) {
	driver := NewMockDriver(0, nil)
	set, err := InitialScan(driver, I32, 0x2000, 0x1000, DefaultScanConfig())
	require.NoError(t, err)
	require.Equal(t, 0, set.Len())
	require.Zero(t, driver.ReadCalls())
}

func TestRefineEmptyInputIsEmpty(t *testing.T) {
	driver := NewMockDriver(0, nil)
	set, err := Refine(driver, nil, ConditionUnchanged(), DefaultRefineConfig())
	require.NoError(t, err)
	require.Equal(t, 0, set.Len())
}

func TestRefineEndToEndUnchangedWithBatchFallback(t *testing.T) {
	items := []Item{
		NewItem(0x1000, []byte{5, 0, 0, 0}, I32),
		NewItem(0x1004, []byte{7, 0, 0, 0}, I32),
		NewItem(0x9000, []byte{9, 0, 0, 0}, I32),
	}

	cd := &combinedDriver{regions: []*MockDriver{
		NewMockDriver(0x1000, []byte{5, 0, 0, 0, 7, 0, 0, 0}),
		NewMockDriver(0x9000, []byte{9, 0, 0, 0}),
	}}

	set, err := Refine(cd, items, ConditionUnchanged(), DefaultRefineConfig())
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
}

// combinedDriver dispatches a read to whichever backing MockDriver region
// contains addr, letting a test assemble a sparse address space out of
// several independently-configured regions.
type combinedDriver struct {
	regions []*MockDriver
}

func (c *combinedDriver) ReadMemory(addr uint64, out []byte, pageStatus *PageStatusBitmap) error {
	for _, r := range c.regions {
		if addr >= r.base && addr+uint64(len(out)) <= r.base+uint64(len(r.data)) {
			return r.ReadMemory(addr, out, pageStatus)
		}
	}
	return NewError("ReadMemory", ErrCodeMemoryReadFailed, "address not covered by any region")
}

var _ Driver = (*combinedDriver)(nil)

// S6 — channel write safety.
func TestChannelAttachTooShortFails(t *testing.T) {
	ch := progress.New()
	require.False(t, ch.Attach(make([]byte, 16)))
	require.False(t, ch.IsCancelRequested())
}

func TestInitialScanPublishesToChannel(t *testing.T) {
	data := make([]byte, 0x1000)
	driver := NewMockDriver(0x1000, data)

	ch := progress.New()
	require.True(t, ch.Attach(make([]byte, 32)))

	cfg := DefaultScanConfig()
	cfg.ChunkSize = 0x1000
	cfg.PageSize = 0x1000
	cfg.Channel = ch

	set, err := InitialScan(driver, I32, 0x1000, 0x2000, cfg)
	require.NoError(t, err)

	snap := ch.Snapshot()
	require.Equal(t, progress.StatusCompleted, snap.Status)
	require.EqualValues(t, set.Len(), snap.FoundCount)
	require.EqualValues(t, 100, snap.Progress)
	require.EqualValues(t, 1, snap.RegionsDone)
}

func TestInitialScanPublishesErrorToChannel(t *testing.T) {
	ch := progress.New()
	require.True(t, ch.Attach(make([]byte, 32)))

	cfg := DefaultScanConfig()
	cfg.Channel = ch

	_, err := InitialScan(nil, I32, 0x1000, 0x2000, cfg)
	require.Error(t, err)

	snap := ch.Snapshot()
	require.Equal(t, progress.StatusError, snap.Status)
	require.Equal(t, progress.ErrNotInitialized, snap.ErrorCode)
}

func TestObserverRecordsReadTelemetry(t *testing.T) {
	data := make([]byte, 0x2000)
	for i := 0; i+4 <= len(data); i += 4 {
		data[i] = 2
	}
	driver := NewMockDriver(0x1000, data)

	m := NewMetrics()

	cfg := DefaultScanConfig()
	cfg.ChunkSize = 0x1000
	cfg.PageSize = 0x1000
	cfg.Observer = NewMetricsObserver(m)

	set, err := InitialScan(driver, I32, 0x1000, 0x3000, cfg)
	require.NoError(t, err)
	require.Equal(t, 2048, set.Len())

	rcfg := DefaultRefineConfig()
	rcfg.Observer = NewMetricsObserver(m)

	refined, err := Refine(driver, set.Items(), ConditionUnchanged(), rcfg)
	require.NoError(t, err)
	require.Equal(t, 2048, refined.Len())

	snap := m.Snapshot()
	require.EqualValues(t, 2, snap.ChunkReadOps)
	require.Zero(t, snap.ChunkReadErrors)
	require.EqualValues(t, 0x2000, snap.ChunkBytesRead)
	require.NotZero(t, snap.BatchReadOps)
	require.Zero(t, snap.BatchReadErrors)
	require.EqualValues(t, 2048, snap.MaxCandidateSetSize)
}
