package ui

import (
	"sort"
	"sync/atomic"
	"time"
)

// LatencySnapshot summarizes one tracker at a point in time.
type LatencySnapshot struct {
	P50 time.Duration
	P99 time.Duration
	N   int
}

// LatencyTracker keeps a fixed ring of duration samples for percentile
// estimates. Observe is lock-free so the draw and sampling paths never
// contend with status-bar reads.
type LatencyTracker struct {
	samples []atomic.Int64
	next    atomic.Uint64
}

// NewLatencyTracker allocates a tracker holding the last size samples.
// Unwritten slots hold -1 so Snapshot can skip them before the ring fills.
func NewLatencyTracker(size int) *LatencyTracker {
	if size <= 0 {
		size = 256
	}
	t := &LatencyTracker{samples: make([]atomic.Int64, size)}
	for i := range t.samples {
		t.samples[i].Store(-1)
	}
	return t
}

// Observe records one duration, overwriting the oldest slot once the
// ring is full. Negative durations clamp to zero so a clock step cannot
// collide with the empty-slot sentinel.
func (t *LatencyTracker) Observe(d time.Duration) {
	if t == nil || len(t.samples) == 0 {
		return
	}
	if d < 0 {
		d = 0
	}
	idx := t.next.Add(1) - 1
	t.samples[idx%uint64(len(t.samples))].Store(d.Nanoseconds())
}

// Snapshot copies the filled slots and derives p50/p99 from the sorted
// copy. Concurrent Observe calls may land mid-copy; a monitor status bar
// does not need a consistent cut.
func (t *LatencyTracker) Snapshot() LatencySnapshot {
	if t == nil || len(t.samples) == 0 {
		return LatencySnapshot{}
	}
	values := make([]int64, 0, len(t.samples))
	for i := range t.samples {
		v := t.samples[i].Load()
		if v < 0 {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return LatencySnapshot{}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return LatencySnapshot{
		P50: time.Duration(values[len(values)/2]),
		P99: time.Duration(values[int(float64(len(values)-1)*0.99)]),
		N:   len(values),
	}
}

// Metrics tracks dashboard-level latency distributions and counters: how
// long queued draws wait before running, how long an OS sampling pass
// takes, and how many refreshes were forced by the user.
type Metrics struct {
	drawLatency     *LatencyTracker
	refreshLatency  *LatencyTracker
	forcedRefreshes atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		drawLatency:    NewLatencyTracker(512),
		refreshLatency: NewLatencyTracker(128),
	}
}

func (m *Metrics) ObserveDraw(d time.Duration) {
	if m == nil {
		return
	}
	m.drawLatency.Observe(d)
}

func (m *Metrics) ObserveRefresh(d time.Duration) {
	if m == nil {
		return
	}
	m.refreshLatency.Observe(d)
}

func (m *Metrics) ForcedRefresh() {
	if m == nil {
		return
	}
	m.forcedRefreshes.Add(1)
}

func (m *Metrics) DrawSnapshot() LatencySnapshot {
	if m == nil {
		return LatencySnapshot{}
	}
	return m.drawLatency.Snapshot()
}

func (m *Metrics) RefreshSnapshot() LatencySnapshot {
	if m == nil {
		return LatencySnapshot{}
	}
	return m.refreshLatency.Snapshot()
}

func (m *Metrics) ForcedRefreshes() uint64 {
	if m == nil {
		return 0
	}
	return m.forcedRefreshes.Load()
}
