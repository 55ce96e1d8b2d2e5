// Package metrics provides Prometheus metrics for the quickdraw service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Token lifecycle
	tokensIssued   prometheus.Counter
	tokensConsumed prometheus.Counter
	tokensRejected prometheus.Counter
	tokensSwept    prometheus.Counter
	tokensLive     prometheus.Gauge

	// Submissions by outcome
	submissions *prometheus.CounterVec

	// Leaderboard reconciliation
	boardEdits       prometheus.Counter
	boardCreates     prometheus.Counter
	boardPinFailures prometheus.Counter
	boardErrors      prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager on a custom registry so /metrics stays free of the default
// Go collectors.
var (
	globalManager  *Manager                 //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "quickdraw",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initialize()
	return m
}

func (m *Manager) initialize() {
	auto := promauto.With(m.registry)

	m.tokensIssued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of play tokens issued",
	})
	m.tokensConsumed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "tokens_consumed_total",
		Help:      "Total number of tokens consumed by a submission",
	})
	m.tokensRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "tokens_rejected_total",
		Help:      "Total number of consume attempts that found no valid token",
	})
	m.tokensSwept = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "tokens_swept_total",
		Help:      "Total number of expired tokens removed by the background sweep",
	})
	m.tokensLive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "tokens_live",
		Help:      "Number of outstanding unconsumed tokens",
	})

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_total",
		Help:      "Score submissions by outcome",
	}, []string{"outcome"})

	m.boardEdits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "board_edits_total",
		Help:      "Leaderboard messages updated in place",
	})
	m.boardCreates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "board_creates_total",
		Help:      "Leaderboard messages created (first time or replacing a missing one)",
	})
	m.boardPinFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "board_pin_failures_total",
		Help:      "Pin attempts that failed (non-fatal)",
	})
	m.boardErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "board_errors_total",
		Help:      "Reconciliation attempts that failed outright",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by endpoint and method",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
}

// Registry returns the gatherer backing the global manager for /metrics.
func Registry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func RecordTokenIssued()   { globalManager.tokensIssued.Inc() }
func RecordTokenConsumed() { globalManager.tokensConsumed.Inc() }
func RecordTokenRejected() { globalManager.tokensRejected.Inc() }

// RecordTokensSwept adds n expired tokens removed by one sweep pass.
func RecordTokensSwept(n int) {
	if n > 0 {
		globalManager.tokensSwept.Add(float64(n))
	}
}

// UpdateLiveTokens sets the outstanding token gauge.
func UpdateLiveTokens(n int) { globalManager.tokensLive.Set(float64(n)) }

// RecordSubmission counts one submission with its outcome code.
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

func RecordBoardEdit()       { globalManager.boardEdits.Inc() }
func RecordBoardCreate()     { globalManager.boardCreates.Inc() }
func RecordBoardPinFailure() { globalManager.boardPinFailures.Inc() }
func RecordBoardError()      { globalManager.boardErrors.Inc() }

// RecordHTTPRequest counts one request on the HTTP surface.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}
