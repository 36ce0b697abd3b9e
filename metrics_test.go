package fuzzyscan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsInitialScanCounters(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	require.Zero(t, snap.TotalOps)

	m.RecordChunkRead(4096, 1_000_000, true)
	m.RecordChunkRead(4096, 1_200_000, true)
	m.RecordChunkRead(0, 500_000, false)

	snap = m.Snapshot()
	require.EqualValues(t, 3, snap.ChunkReadOps)
	require.EqualValues(t, 1, snap.ChunkReadErrors)
	require.EqualValues(t, 8192, snap.ChunkBytesRead)
}

func TestMetricsRefineCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordBatchRead(65536, 2_000_000, true)
	m.RecordBatchRead(0, 3_000_000, false)
	m.RecordFallbackRead(100_000, true)
	m.RecordFallbackRead(100_000, false)

	snap := m.Snapshot()
	require.EqualValues(t, 2, snap.BatchReadOps)
	require.EqualValues(t, 1, snap.BatchReadErrors)
	require.EqualValues(t, 65536, snap.BatchBytesRead)
	require.EqualValues(t, 2, snap.FallbackReadOps)
	require.EqualValues(t, 1, snap.FallbackReadErrors)
}

func TestMetricsCandidateSetSize(t *testing.T) {
	m := NewMetrics()

	m.RecordCandidateSetSize(1000)
	m.RecordCandidateSetSize(400)
	m.RecordCandidateSetSize(120)

	snap := m.Snapshot()
	require.EqualValues(t, 1000, snap.MaxCandidateSetSize)
	require.InDelta(t, (1000.0+400.0+120.0)/3.0, snap.AvgCandidateSetSize, 0.1)
}

func TestMetricsLatencyAverage(t *testing.T) {
	m := NewMetrics()

	m.RecordChunkRead(4096, 1_000_000, true)
	m.RecordBatchRead(4096, 2_000_000, true)

	snap := m.Snapshot()
	require.EqualValues(t, 1_500_000, snap.AvgLatencyNs)
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)
	snap := m.Snapshot()
	require.GreaterOrEqual(t, snap.UptimeNs, uint64(10*time.Millisecond))

	m.Stop()
	time.Sleep(5 * time.Millisecond)
	snap2 := m.Snapshot()
	require.LessOrEqual(t, snap2.UptimeNs, snap.UptimeNs+uint64(2*time.Millisecond))
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.RecordChunkRead(4096, 1_000_000, true)
	m.RecordBatchRead(4096, 2_000_000, true)
	m.RecordCandidateSetSize(10)

	snap := m.Snapshot()
	require.NotZero(t, snap.TotalOps)

	m.Reset()

	snap = m.Snapshot()
	require.Zero(t, snap.TotalOps)
	require.Zero(t, snap.TotalBytes)
	require.Zero(t, snap.MaxCandidateSetSize)
}

func TestObserverNoOp(t *testing.T) {
	observer := NoOpObserver{}
	observer.ObserveChunkRead(4096, 1_000_000, true)
	observer.ObserveBatchRead(4096, 1_000_000, true)
	observer.ObserveFallbackRead(1_000_000, true)
	observer.ObserveCandidateSetSize(10)
}

func TestMetricsObserverForwards(t *testing.T) {
	m := NewMetrics()
	observer := NewMetricsObserver(m)

	observer.ObserveChunkRead(4096, 1_000_000, true)
	observer.ObserveBatchRead(8192, 2_000_000, true)
	observer.ObserveCandidateSetSize(50)

	snap := m.Snapshot()
	require.EqualValues(t, 1, snap.ChunkReadOps)
	require.EqualValues(t, 1, snap.BatchReadOps)
	require.EqualValues(t, 4096, snap.ChunkBytesRead)
	require.EqualValues(t, 8192, snap.BatchBytesRead)
	require.EqualValues(t, 50, snap.MaxCandidateSetSize)
}

func TestMetricsHistogramPercentiles(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 50; i++ {
		m.RecordChunkRead(4096, 500_000, true) // 500us
	}
	for i := 0; i < 49; i++ {
		m.RecordBatchRead(4096, 5_000_000, true) // 5ms
	}
	m.RecordBatchRead(4096, 50_000_000, true) // 50ms, the P99

	snap := m.Snapshot()
	require.EqualValues(t, 100, snap.TotalOps)
	require.InDelta(t, 500_000, snap.LatencyP50Ns, 500_000)
	require.InDelta(t, 50_000_000, snap.LatencyP99Ns, 45_000_000)
}
