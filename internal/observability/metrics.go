package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the research metadata API.
// Metrics are organized by subsystem: inbound HTTP, upstream providers, and
// the search/trend pipeline. All counters and histograms are registered via
// promauto with the default Prometheus registry.
type Metrics struct {
	// HTTPRequestsTotal counts inbound requests, labeled by route pattern and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes inbound request duration in seconds, labeled by route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	// UpstreamRequestsTotal counts provider calls, labeled by provider, endpoint, and outcome.
	UpstreamRequestsTotal *prometheus.CounterVec

	// UpstreamRequestDuration observes provider call duration in seconds, labeled by provider and endpoint.
	UpstreamRequestDuration *prometheus.HistogramVec

	// PapersFetched counts normalized DOI-bearing papers returned by each provider.
	PapersFetched *prometheus.CounterVec

	// DuplicatesRemoved counts papers dropped by DOI deduplication.
	DuplicatesRemoved prometheus.Counter

	// TrendComputations counts completed n-gram trend computations.
	TrendComputations prometheus.Counter

	// LookupsTotal counts DOI lookups, labeled by the resolving source or "none".
	LookupsTotal *prometheus.CounterVec

	// InternalErrors counts local failures reported as 500, labeled by operation.
	InternalErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Inbound HTTP
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"route"}),

		// Upstream providers
		UpstreamRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to upstream paper providers",
		}, []string{"provider", "endpoint", "outcome"}),
		UpstreamRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream provider requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}, []string{"provider", "endpoint"}),

		// Pipeline
		PapersFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_fetched_total",
			Help:      "Total number of normalized papers returned by each provider",
		}, []string{"provider"}),
		DuplicatesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_duplicates_removed_total",
			Help:      "Total number of papers removed by DOI deduplication",
		}),
		TrendComputations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_computations_total",
			Help:      "Total number of n-gram trend computations",
		}),
		LookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doi_lookups_total",
			Help:      "Total number of DOI lookups by resolving source",
		}, []string{"source"}),
		InternalErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "internal_errors_total",
			Help:      "Total number of internal errors by operation",
		}, []string{"operation"}),
	}
}

// RecordHTTPRequest records a served inbound request.
func (m *Metrics) RecordHTTPRequest(route, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

// ObserveUpstreamRequest records one provider call. It satisfies
// papersources.RequestObserver.
func (m *Metrics) ObserveUpstreamRequest(provider, endpoint, outcome string, durationSeconds float64) {
	m.UpstreamRequestsTotal.WithLabelValues(provider, endpoint, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(provider, endpoint).Observe(durationSeconds)
}

// RecordPapersFetched records how many papers a provider returned.
func (m *Metrics) RecordPapersFetched(provider string, count int) {
	m.PapersFetched.WithLabelValues(provider).Add(float64(count))
}

// RecordDuplicatesRemoved records papers dropped by deduplication.
func (m *Metrics) RecordDuplicatesRemoved(count int) {
	m.DuplicatesRemoved.Add(float64(count))
}

// RecordTrendComputation records a completed trend computation.
func (m *Metrics) RecordTrendComputation() {
	m.TrendComputations.Inc()
}

// RecordLookup records a DOI lookup outcome.
func (m *Metrics) RecordLookup(source string) {
	m.LookupsTotal.WithLabelValues(source).Inc()
}

// RecordInternalError records a local failure.
func (m *Metrics) RecordInternalError(operation string) {
	m.InternalErrors.WithLabelValues(operation).Inc()
}
