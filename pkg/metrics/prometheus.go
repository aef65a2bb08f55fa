// Package metrics provides Prometheus metrics for the coachboard service.
package metrics

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultRefreshInterval    = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Evaluation metrics
	evaluations       *prometheus.CounterVec
	evaluationLatency *prometheus.HistogramVec
	badges            *prometheus.CounterVec
	riskBands         *prometheus.CounterVec

	// Storage metrics
	recordsStored        *prometheus.GaugeVec
	submissionsDuplicate *prometheus.CounterVec

	// Batch metrics
	queueDepth *prometheus.GaugeVec
	jobs       *prometheus.CounterVec
	jobLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         prometheus.Counter

	// Error metrics
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry served on /metrics

var globalManager = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals // singleton used by the package-level recorders

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "coachboard",
		subsystem:        "api",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(
		m.counterOpts("evaluations_total", "Total number of evaluations by kind"),
		[]string{"kind"},
	)
	m.evaluationLatency = auto.NewHistogramVec(
		m.histogramOpts("evaluation_latency_milliseconds", "Evaluation latency in milliseconds", m.histogramBuckets),
		[]string{"kind"},
	)
	m.badges = auto.NewCounterVec(
		m.counterOpts("badges_total", "Badges awarded by evaluation kind and label"),
		[]string{"kind", "badge"},
	)
	m.riskBands = auto.NewCounterVec(
		m.counterOpts("injury_risk_band_total", "Injury evaluations by risk band"),
		[]string{"band"},
	)

	m.recordsStored = auto.NewGaugeVec(
		m.gaugeOpts("records_stored", "Stored evaluation records by kind"),
		[]string{"kind"},
	)
	m.submissionsDuplicate = auto.NewCounterVec(
		m.counterOpts("submissions_duplicate_total", "Submissions rejected as duplicates by idempotency key"),
		[]string{"kind"},
	)

	m.queueDepth = auto.NewGaugeVec(
		m.gaugeOpts("queue_depth", "Items buffered in a job queue"),
		[]string{"queue"},
	)
	m.jobs = auto.NewCounterVec(
		m.counterOpts("jobs_total", "Jobs processed by worker pools by outcome"),
		[]string{"pool", "status"},
	)
	m.jobLatency = auto.NewHistogramVec(
		m.histogramOpts("job_latency_milliseconds", "Worker job latency in milliseconds", m.histogramBuckets),
		[]string{"pool"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.rateLimited = auto.NewCounter(
		m.counterOpts("rate_limited_total", "Requests rejected by the rate limiter"),
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds",
		"Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// RecordEvaluation counts one evaluation of kind and observes its latency.
func (m *Manager) RecordEvaluation(kind string, latency time.Duration) {
	if !m.enabled {
		return
	}
	m.evaluations.WithLabelValues(kind).Inc()
	m.evaluationLatency.WithLabelValues(kind).Observe(float64(latency) / nanosecondsPerMillisecond)
}

// RecordBadges counts each awarded badge.
func (m *Manager) RecordBadges(kind string, badges []string) {
	if !m.enabled {
		return
	}
	for _, b := range badges {
		m.badges.WithLabelValues(kind, b).Inc()
	}
}

// RecordRiskBand counts an injury evaluation in its band.
func (m *Manager) RecordRiskBand(band string) {
	if !m.enabled {
		return
	}
	m.riskBands.WithLabelValues(band).Inc()
}

// UpdateRecordsStored sets the number of stored records of kind.
func (m *Manager) UpdateRecordsStored(kind string, count int) {
	if !m.enabled {
		return
	}
	m.recordsStored.WithLabelValues(kind).Set(float64(count))
}

// RecordDuplicateSubmission counts a submission dropped by idempotency.
func (m *Manager) RecordDuplicateSubmission(kind string) {
	if !m.enabled {
		return
	}
	m.submissionsDuplicate.WithLabelValues(kind).Inc()
}

// UpdateQueueDepth sets the number of items buffered in queue.
func (m *Manager) UpdateQueueDepth(queue string, depth int) {
	if !m.enabled {
		return
	}
	m.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordJob counts one worker job and observes its latency.
func (m *Manager) RecordJob(pool, status string, latency time.Duration) {
	if !m.enabled {
		return
	}
	m.jobs.WithLabelValues(pool, status).Inc()
	m.jobLatency.WithLabelValues(pool).Observe(float64(latency) / nanosecondsPerMillisecond)
}

// RecordHTTPRequest records an HTTP request and its duration in milliseconds.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited counts a request rejected with 429.
func (m *Manager) RecordRateLimited() {
	if !m.enabled {
		return
	}
	m.rateLimited.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMetrics samples memory, goroutines and GC pauses.
func (m *Manager) UpdateSystemMetrics() {
	if !m.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.Alloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		m.systemGCPauseTime.Observe(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// RunSystemCollector calls UpdateSystemMetrics every refresh interval until
// ctx is cancelled. It always returns nil so it can run under an errgroup.
func (m *Manager) RunSystemCollector(ctx context.Context) error {
	m.UpdateSystemMetrics()
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.UpdateSystemMetrics()
		}
	}
}

// Handler serves the manager's registry in the Prometheus text format.
func (m *Manager) Handler() (http.Handler, error) {
	g, ok := m.registry.(prometheus.Gatherer)
	if !ok {
		return nil, ErrNotGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by the default manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level recorders on the default manager.

func RecordEvaluation(kind string, latency time.Duration) {
	globalManager.RecordEvaluation(kind, latency)
}

func RecordBadges(kind string, badges []string) { globalManager.RecordBadges(kind, badges) }

func RecordRiskBand(band string) { globalManager.RecordRiskBand(band) }

func UpdateRecordsStored(kind string, count int) { globalManager.UpdateRecordsStored(kind, count) }

func RecordDuplicateSubmission(kind string) { globalManager.RecordDuplicateSubmission(kind) }

func UpdateQueueDepth(queue string, depth int) { globalManager.UpdateQueueDepth(queue, depth) }

func RecordJob(pool, status string, latency time.Duration) {
	globalManager.RecordJob(pool, status, latency)
}

func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

func RecordRateLimited() { globalManager.RecordRateLimited() }

func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}
