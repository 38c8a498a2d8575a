package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the search gateway.
// Counters and histograms are registered via promauto against the default
// registry; the namespace prefixes every metric name.
type Metrics struct {
	// SearchesTotal counts inbound searches, labeled by outcome
	// (ok, invalid_query, rate_limited, upstream_timeout, upstream_failure).
	SearchesTotal *prometheus.CounterVec

	// SearchDuration observes end-to-end gateway search duration in seconds.
	SearchDuration prometheus.Histogram

	// ResultsPerSearch observes the number of normalized records per
	// successful search.
	ResultsPerSearch prometheus.Histogram

	// RateLimitRejections counts admission rejections.
	RateLimitRejections prometheus.Counter

	// RateLimitKeys gauges the number of client keys currently tracked
	// by the admission limiter.
	RateLimitKeys prometheus.Gauge

	// UpstreamRequestsTotal counts outbound metadata requests.
	UpstreamRequestsTotal prometheus.Counter

	// UpstreamRequestsFailed counts failed outbound requests, labeled by
	// error class (timeout, failure).
	UpstreamRequestsFailed *prometheus.CounterVec

	// UpstreamRequestDuration observes outbound request duration in seconds.
	UpstreamRequestDuration prometheus.Histogram
}

// Search outcome label values.
const (
	OutcomeOK              = "ok"
	OutcomeInvalidQuery    = "invalid_query"
	OutcomeRateLimited     = "rate_limited"
	OutcomeUpstreamTimeout = "upstream_timeout"
	OutcomeUpstreamFailure = "upstream_failure"
)

// NewMetrics creates a Metrics instance with all metrics initialized.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of inbound searches by outcome",
		}, []string{"outcome"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ResultsPerSearch: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_per_search",
			Help:      "Number of normalized records returned per successful search",
			Buckets:   []float64{0, 1, 5, 10, 20, 25},
		}),
		RateLimitRejections: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_rejections_total",
			Help:      "Total number of requests rejected by the admission limiter",
		}),
		RateLimitKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ratelimit_tracked_keys",
			Help:      "Number of client keys currently tracked by the admission limiter",
		}),
		UpstreamRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of outbound metadata service requests",
		}),
		UpstreamRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_failed_total",
			Help:      "Total number of failed outbound requests by error class",
		}, []string{"class"}),
		UpstreamRequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound metadata request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// RecordSearch records one completed search with its outcome and duration.
func (m *Metrics) RecordSearch(outcome string, seconds float64) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(seconds)
}

// RecordResults records the result count of a successful search.
func (m *Metrics) RecordResults(count int) {
	m.ResultsPerSearch.Observe(float64(count))
}

// RecordRateLimitRejection records one admission rejection.
func (m *Metrics) RecordRateLimitRejection() {
	m.RateLimitRejections.Inc()
}

// SetRateLimitKeys updates the tracked-keys gauge.
func (m *Metrics) SetRateLimitKeys(n int) {
	m.RateLimitKeys.Set(float64(n))
}

// RecordUpstreamRequest records one outbound request and its duration.
func (m *Metrics) RecordUpstreamRequest(seconds float64) {
	m.UpstreamRequestsTotal.Inc()
	m.UpstreamRequestDuration.Observe(seconds)
}

// RecordUpstreamFailure records one failed outbound request by class.
func (m *Metrics) RecordUpstreamFailure(class string) {
	m.UpstreamRequestsFailed.WithLabelValues(class).Inc()
}
