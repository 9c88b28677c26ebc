// Package metrics holds the Prometheus collectors exported by the assistant.
//
// Metrics:
//   - skillbridge_ask_total{route} - replies produced, by orchestrator route
//   - skillbridge_synthesis_total{tier} - document answers, by synthesis tier
//   - skillbridge_job_search_seconds - latency of job store lookups
//   - skillbridge_document_loads_total{result} - document cache loads
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Synthesis tiers.
const (
	TierProvider = "provider"
	TierFallback = "fallback"
)

// Document load results.
const (
	LoadOK    = "ok"
	LoadEmpty = "empty"
	LoadError = "error"
)

// Metrics groups the collectors.
type Metrics struct {
	AskTotal           *prometheus.CounterVec
	SynthesisTotal     *prometheus.CounterVec
	JobSearchDuration  prometheus.Histogram
	DocumentLoadsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AskTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillbridge_ask_total",
				Help: "Total number of replies produced, by route",
			},
			[]string{"route"},
		),
		SynthesisTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillbridge_synthesis_total",
				Help: "Total number of synthesized document answers, by tier",
			},
			[]string{"tier"},
		),
		JobSearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "skillbridge_job_search_seconds",
				Help:    "Duration of job store lookups in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		DocumentLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skillbridge_document_loads_total",
				Help: "Total number of document cache loads, by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveAsk counts a reply on route.
func (m *Metrics) ObserveAsk(route string) {
	if m == nil {
		return
	}
	m.AskTotal.WithLabelValues(route).Inc()
}

// ObserveSynthesis counts a document answer produced by tier.
func (m *Metrics) ObserveSynthesis(tier string) {
	if m == nil {
		return
	}
	m.SynthesisTotal.WithLabelValues(tier).Inc()
}

// ObserveJobSearch records the time elapsed since start.
func (m *Metrics) ObserveJobSearch(start time.Time) {
	if m == nil {
		return
	}
	m.JobSearchDuration.Observe(time.Since(start).Seconds())
}

// ObserveDocumentLoad counts a document cache load with result.
func (m *Metrics) ObserveDocumentLoad(result string) {
	if m == nil {
		return
	}
	m.DocumentLoadsTotal.WithLabelValues(result).Inc()
}
