package fuzzyscan

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the latency histogram buckets in nanoseconds.
// Buckets cover from 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks performance and operational statistics for a scan.
type Metrics struct {
	// Initial scan counters
	ChunkReadOps    atomic.Uint64 // Total chunk reads issued by the initial scanner
	ChunkReadErrors atomic.Uint64 // Chunk reads that failed outright
	ChunkBytesRead  atomic.Uint64 // Bytes successfully read during initial scan

	// Refine counters
	BatchReadOps    atomic.Uint64 // Total batch reads issued by the refiner
	BatchReadErrors atomic.Uint64 // Batch reads that failed and fell back to per-address reads
	BatchBytesRead  atomic.Uint64 // Bytes successfully read via batch reads

	// Per-address fallback reads (one per address in a failed batch)
	FallbackReadOps    atomic.Uint64
	FallbackReadErrors atomic.Uint64 // Addresses that remained unreadable after fallback

	// Candidate set size samples, taken once per initial scan and refine round
	CandidateSetTotal atomic.Uint64 // Cumulative candidate set size samples
	CandidateSetCount atomic.Uint64 // Number of samples
	MaxCandidateSet   atomic.Uint64 // Largest observed candidate set size

	// Performance tracking
	TotalLatencyNs atomic.Uint64 // Cumulative read latency in nanoseconds
	OpCount        atomic.Uint64 // Total reads (for average latency calculation)

	// Latency histogram buckets (cumulative counts).
	// Each bucket[i] contains the count of reads with latency <= LatencyBuckets[i]
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Scan lifecycle
	StartTime atomic.Int64 // Scan start timestamp (UnixNano)
	StopTime  atomic.Int64 // Scan stop timestamp (UnixNano)
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordChunkRead records a single initial-scan chunk read.
func (m *Metrics) RecordChunkRead(bytes uint64, latencyNs uint64, success bool) {
	m.ChunkReadOps.Add(1)
	if success {
		m.ChunkBytesRead.Add(bytes)
	} else {
		m.ChunkReadErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordBatchRead records a single refine batch read.
func (m *Metrics) RecordBatchRead(bytes uint64, latencyNs uint64, success bool) {
	m.BatchReadOps.Add(1)
	if success {
		m.BatchBytesRead.Add(bytes)
	} else {
		m.BatchReadErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordFallbackRead records a per-address read attempted after its batch failed.
func (m *Metrics) RecordFallbackRead(latencyNs uint64, success bool) {
	m.FallbackReadOps.Add(1)
	if !success {
		m.FallbackReadErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordCandidateSetSize records the candidate set size observed after an
// initial scan or a refine round.
func (m *Metrics) RecordCandidateSetSize(size uint64) {
	m.CandidateSetTotal.Add(size)
	m.CandidateSetCount.Add(1)

	for {
		current := m.MaxCandidateSet.Load()
		if size <= current {
			break
		}
		if m.MaxCandidateSet.CompareAndSwap(current, size) {
			break
		}
	}
}

// recordLatency records read latency and updates the histogram.
func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)

	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the scan as finished.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	ChunkReadOps    uint64
	ChunkReadErrors uint64
	ChunkBytesRead  uint64

	BatchReadOps    uint64
	BatchReadErrors uint64
	BatchBytesRead  uint64

	FallbackReadOps    uint64
	FallbackReadErrors uint64

	AvgCandidateSetSize float64
	MaxCandidateSetSize uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	ChunkReadIOPS  float64
	BatchReadIOPS  float64
	ReadBandwidth  float64
	TotalOps       uint64
	TotalBytes     uint64
	ErrorRate      float64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		ChunkReadOps:        m.ChunkReadOps.Load(),
		ChunkReadErrors:     m.ChunkReadErrors.Load(),
		ChunkBytesRead:      m.ChunkBytesRead.Load(),
		BatchReadOps:        m.BatchReadOps.Load(),
		BatchReadErrors:     m.BatchReadErrors.Load(),
		BatchBytesRead:      m.BatchBytesRead.Load(),
		FallbackReadOps:     m.FallbackReadOps.Load(),
		FallbackReadErrors:  m.FallbackReadErrors.Load(),
		MaxCandidateSetSize: m.MaxCandidateSet.Load(),
	}

	snap.TotalOps = snap.ChunkReadOps + snap.BatchReadOps + snap.FallbackReadOps
	snap.TotalBytes = snap.ChunkBytesRead + snap.BatchBytesRead

	candidateTotal := m.CandidateSetTotal.Load()
	candidateCount := m.CandidateSetCount.Load()
	if candidateCount > 0 {
		snap.AvgCandidateSetSize = float64(candidateTotal) / float64(candidateCount)
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / opCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.ChunkReadIOPS = float64(snap.ChunkReadOps) / uptimeSeconds
		snap.BatchReadIOPS = float64(snap.BatchReadOps) / uptimeSeconds
		snap.ReadBandwidth = float64(snap.TotalBytes) / uptimeSeconds
	}

	totalErrors := snap.ChunkReadErrors + snap.BatchReadErrors + snap.FallbackReadErrors
	if snap.TotalOps > 0 {
		snap.ErrorRate = float64(totalErrors) / float64(snap.TotalOps) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if opCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalOps := m.OpCount.Load()
	if totalOps == 0 {
		return 0
	}

	targetCount := uint64(float64(totalOps) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset resets all metrics counters. Useful for testing.
func (m *Metrics) Reset() {
	m.ChunkReadOps.Store(0)
	m.ChunkReadErrors.Store(0)
	m.ChunkBytesRead.Store(0)
	m.BatchReadOps.Store(0)
	m.BatchReadErrors.Store(0)
	m.BatchBytesRead.Store(0)
	m.FallbackReadOps.Store(0)
	m.FallbackReadErrors.Store(0)
	m.CandidateSetTotal.Store(0)
	m.CandidateSetCount.Store(0)
	m.MaxCandidateSet.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection for a running scan.
type Observer interface {
	// ObserveChunkRead is called for each initial-scan chunk read.
	ObserveChunkRead(bytes uint64, latencyNs uint64, success bool)

	// ObserveBatchRead is called for each refine batch read.
	ObserveBatchRead(bytes uint64, latencyNs uint64, success bool)

	// ObserveFallbackRead is called for each per-address read attempted
	// after its batch failed.
	ObserveFallbackRead(latencyNs uint64, success bool)

	// ObserveCandidateSetSize is called once per completed initial scan and
	// once per completed refine round.
	ObserveCandidateSetSize(size uint64)
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveChunkRead(uint64, uint64, bool) {}
func (NoOpObserver) ObserveBatchRead(uint64, uint64, bool) {}
func (NoOpObserver) ObserveFallbackRead(uint64, bool)      {}
func (NoOpObserver) ObserveCandidateSetSize(uint64)        {}

// MetricsObserver implements Observer using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveChunkRead(bytes uint64, latencyNs uint64, success bool) {
	o.metrics.RecordChunkRead(bytes, latencyNs, success)
}

func (o *MetricsObserver) ObserveBatchRead(bytes uint64, latencyNs uint64, success bool) {
	o.metrics.RecordBatchRead(bytes, latencyNs, success)
}

func (o *MetricsObserver) ObserveFallbackRead(latencyNs uint64, success bool) {
	o.metrics.RecordFallbackRead(latencyNs, success)
}

func (o *MetricsObserver) ObserveCandidateSetSize(size uint64) {
	o.metrics.RecordCandidateSetSize(size)
}

// Compile-time interface checks.
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
