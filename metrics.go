package reportguard

import "sync/atomic"

// MetricID identifies one atomic counter.
type MetricID uint16

const (
	// MetricUploadAccepted counts tables that passed every check.
	MetricUploadAccepted MetricID = iota
	// MetricUploadRejected counts tables that failed a structural check.
	MetricUploadRejected
	// MetricRateLimitHit counts denied rate-limit checks.
	MetricRateLimitHit
	// MetricSanitizerHit counts cells or headers the sanitizer neutralized.
	MetricSanitizerHit
	// MetricCellTruncated counts cells cut at the length cap.
	MetricCellTruncated
	// MetricEmailAccepted counts emails that passed the full pipeline.
	MetricEmailAccepted
	// MetricEmailRejected counts emails that failed a pipeline stage.
	MetricEmailRejected
	// MetricEmailStored counts records actually appended to the store.
	MetricEmailStored
	// MetricEmailDuplicate counts submissions deduplicated by the store.
	MetricEmailDuplicate
	// MetricEmailDropped counts submissions silently dropped at capacity.
	MetricEmailDropped
	// MetricStoreFailure counts email store I/O failures.
	MetricStoreFailure
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the guard's atomic counters. All methods are safe for
// concurrent use and are no-ops when collection is disabled.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being collected.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Counters are read individually; the
// snapshot is not a consistent cut under concurrent updates.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
