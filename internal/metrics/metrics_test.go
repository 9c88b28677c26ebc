package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAsk("jobs")
	m.ObserveAsk("jobs")
	m.ObserveSynthesis(TierFallback)
	m.ObserveDocumentLoad(LoadEmpty)
	m.ObserveJobSearch(time.Now())

	if got := testutil.ToFloat64(m.AskTotal.WithLabelValues("jobs")); got != 2 {
		t.Fatalf("expected 2 job replies, got %v", got)
	}
	if got := testutil.ToFloat64(m.SynthesisTotal.WithLabelValues(TierFallback)); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}
	if got := testutil.ToFloat64(m.DocumentLoadsTotal.WithLabelValues(LoadEmpty)); got != 1 {
		t.Fatalf("expected 1 empty load, got %v", got)
	}
	if got := testutil.CollectAndCount(m.JobSearchDuration); got != 1 {
		t.Fatalf("expected histogram to be collected, got %d", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.ObserveAsk("greeting")
	m.ObserveSynthesis(TierProvider)
	m.ObserveDocumentLoad(LoadOK)
	m.ObserveJobSearch(time.Now())
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
