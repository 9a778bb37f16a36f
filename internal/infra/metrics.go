package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	fetchesStarted   atomic.Uint64
	fetchesSucceeded atomic.Uint64
	fetchesFailed    atomic.Uint64
	staleDiscarded   atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	inFlight          atomic.Int32
	activeConnections atomic.Int32 // websocket clients
	lastSuccessUnix   atomic.Int64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// FetchStarted records the start of a feed request.
func (m *Metrics) FetchStarted() {
	m.fetchesStarted.Add(1)
	m.inFlight.Add(1)
}

// FetchFinished records a completed feed request with its latency.
func (m *Metrics) FetchFinished(latency time.Duration, err error) {
	m.inFlight.Add(-1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
	if err != nil {
		m.fetchesFailed.Add(1)
		return
	}
	m.fetchesSucceeded.Add(1)
	m.lastSuccessUnix.Store(time.Now().Unix())
}

// RecordStale records a completion discarded because a newer one was applied.
func (m *Metrics) RecordStale() {
	m.staleDiscarded.Add(1)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	FetchesStarted    uint64    `json:"fetches_started"`
	FetchesSucceeded  uint64    `json:"fetches_succeeded"`
	FetchesFailed     uint64    `json:"fetches_failed"`
	StaleDiscarded    uint64    `json:"stale_discarded"`
	AvgLatencyNs      int64     `json:"avg_latency_ns"`
	InFlight          int32     `json:"in_flight"`
	ActiveConnections int32     `json:"active_connections"`
	LastSuccess       time.Time `json:"last_success"`
	Timestamp         time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	var lastSuccess time.Time
	if ts := m.lastSuccessUnix.Load(); ts > 0 {
		lastSuccess = time.Unix(ts, 0)
	}

	return MetricsSnapshot{
		FetchesStarted:    m.fetchesStarted.Load(),
		FetchesSucceeded:  m.fetchesSucceeded.Load(),
		FetchesFailed:     m.fetchesFailed.Load(),
		StaleDiscarded:    m.staleDiscarded.Load(),
		AvgLatencyNs:      avgLatency,
		InFlight:          m.inFlight.Load(),
		ActiveConnections: m.activeConnections.Load(),
		LastSuccess:       lastSuccess,
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.fetchesStarted.Store(0)
	m.fetchesSucceeded.Store(0)
	m.fetchesFailed.Store(0)
	m.staleDiscarded.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.inFlight.Store(0)
	m.activeConnections.Store(0)
	m.lastSuccessUnix.Store(0)
}
