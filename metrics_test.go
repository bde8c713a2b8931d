package reportguard

import (
	"sync"
	"testing"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricUploadAccepted)
	if m.Enabled() {
		t.Fatal("Enabled() = true for disabled metrics")
	}
	if v := m.Value(MetricUploadAccepted); v != 0 {
		t.Fatalf("value = %d, want 0", v)
	}
	if s := m.Snapshot(); len(s.Counters) != 0 {
		t.Fatalf("snapshot = %v, want empty", s.Counters)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: true})

	const workers = 16
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricSanitizerHit)
			}
		}()
	}
	wg.Wait()

	if v := m.Value(MetricSanitizerHit); v != workers*perWorker {
		t.Fatalf("value = %d, want %d", v, workers*perWorker)
	}
	if s := m.Snapshot(); s.Counters[MetricSanitizerHit] != workers*perWorker {
		t.Fatalf("snapshot = %d, want %d", s.Counters[MetricSanitizerHit], workers*perWorker)
	}
}

func TestMetricsOutOfRangeIDIgnored(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount + 5)
	if v := m.Value(metricIDCount + 5); v != 0 {
		t.Fatalf("value = %d, want 0", v)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricUploadAccepted)
	if m.Enabled() {
		t.Fatal("nil metrics report enabled")
	}
	if v := m.Value(MetricUploadAccepted); v != 0 {
		t.Fatalf("value = %d, want 0", v)
	}
}
