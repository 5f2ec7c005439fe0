// Package metrics provides Prometheus metrics for the projection engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the engine reports to.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Projection
	projections       *prometheus.CounterVec
	projectionLatency prometheus.Histogram
	missingMatchups   prometheus.Counter
	penaltyCacheHits  prometheus.Counter
	penaltyCacheMiss  prometheus.Counter
	runs              *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec

	// Inputs
	rowsLoaded     *prometheus.CounterVec
	rowsRejected   *prometheus.CounterVec
	weatherLookups *prometheus.CounterVec
	scrapeRequests *prometheus.CounterVec
	breakerState   *prometheus.GaugeVec

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerActiveCount  prometheus.Gauge
	workerTasks        *prometheus.CounterVec
	workerLatency      prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var (
	globalMu       sync.RWMutex         //nolint:gochecknoglobals // guards globalManager and customRegistry
	globalManager  *Manager             //nolint:gochecknoglobals // singleton metrics manager
	customRegistry *prometheus.Registry //nolint:gochecknoglobals // registry without default Go collectors
)

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure builds a manager from opts on a fresh registry and installs both
// as the globals, so renamed collectors never clash with earlier ones.
// A WithPrometheusRegistry option in opts is overridden.
func Configure(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	opts = append(opts[:len(opts):len(opts)], WithPrometheusRegistry(reg))
	m := NewManager(opts...)

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = m
	customRegistry = reg
	return m
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry, which defaults to prometheus.DefaultRegisterer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "yaculator",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// SetGlobal replaces the manager used by the package-level recorders and
// returns the previous one.
func SetGlobal(m *Manager) *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := globalManager
	globalManager = m
	return prev
}

// Default returns the manager used by the package-level recorders.
func Default() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

func global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalManager == nil || !globalManager.enabled {
		return nil
	}
	return globalManager
}

// Enabled reports whether m records anything.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.projections = m.counterVec("projections_total", "Receiver-week projections produced, by opponent scheme", "scheme")
	m.projectionLatency = m.histogram("projection_latency_milliseconds", "Latency of a single receiver-week projection")
	m.missingMatchups = m.counter("missing_matchups_total", "Receiver-weeks skipped because no opponent was scheduled")
	m.penaltyCacheHits = m.counter("penalty_cache_hits_total", "Opponent penalty lookups served from cache")
	m.penaltyCacheMiss = m.counter("penalty_cache_misses_total", "Opponent penalty lookups that aggregated a pool")
	m.runs = m.counterVec("runs_total", "Completed runs by kind and outcome", "kind", "outcome")
	m.runDuration = m.histogramVec("run_duration_milliseconds", "Wall time of a run", "kind")

	m.rowsLoaded = m.counterVec("rows_loaded_total", "Input rows accepted by table", "table")
	m.rowsRejected = m.counterVec("rows_rejected_total", "Input rows rejected by table", "table")
	m.weatherLookups = m.counterVec("weather_lookups_total", "Weather boost lookups by source and outcome", "source", "outcome")
	m.scrapeRequests = m.counterVec("scrape_requests_total", "Schedule page fetches by outcome", "outcome")
	m.breakerState = m.gaugeVec("circuit_breaker_state", "Circuit breaker state (0 closed, 1 half-open, 2 open)", "name")

	m.queueSize = m.gauge("queue_size", "Tasks waiting in the work queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the work queue")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Tasks rejected by a full or closed queue")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently running a task")
	m.workerTasks = m.counterVec("worker_tasks_total", "Tasks finished by workers, by status", "status")
	m.workerLatency = m.histogram("worker_task_latency_milliseconds", "Task run time inside a worker")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

// RecordProjection counts one finished projection.
func RecordProjection(scheme string) {
	if m := global(); m != nil {
		m.projections.WithLabelValues(scheme).Inc()
	}
}

// RecordProjectionLatency records projection latency in milliseconds.
func RecordProjectionLatency(latencyMs float64) {
	if m := global(); m != nil {
		m.projectionLatency.Observe(latencyMs)
	}
}

// RecordMissingMatchup counts a receiver-week with no scheduled opponent.
func RecordMissingMatchup() {
	if m := global(); m != nil {
		m.missingMatchups.Inc()
	}
}

// RecordPenaltyCacheHit counts a cached penalty lookup.
func RecordPenaltyCacheHit() {
	if m := global(); m != nil {
		m.penaltyCacheHits.Inc()
	}
}

// RecordPenaltyCacheMiss counts a penalty lookup that aggregated a pool.
func RecordPenaltyCacheMiss() {
	if m := global(); m != nil {
		m.penaltyCacheMiss.Inc()
	}
}

// RecordRun counts a finished run and its wall time.
func RecordRun(kind, outcome string, durationMs float64) {
	if m := global(); m != nil {
		m.runs.WithLabelValues(kind, outcome).Inc()
		m.runDuration.WithLabelValues(kind).Observe(durationMs)
	}
}

// RecordRowsLoaded counts accepted input rows for table.
func RecordRowsLoaded(table string, n int) {
	if m := global(); m != nil {
		m.rowsLoaded.WithLabelValues(table).Add(float64(n))
	}
}

// RecordRowsRejected counts rejected input rows for table.
func RecordRowsRejected(table string, n int) {
	if m := global(); m != nil {
		m.rowsRejected.WithLabelValues(table).Add(float64(n))
	}
}

// RecordWeatherLookup counts a weather lookup.
func RecordWeatherLookup(source, outcome string) {
	if m := global(); m != nil {
		m.weatherLookups.WithLabelValues(source, outcome).Inc()
	}
}

// RecordScrapeRequest counts a schedule page fetch.
func RecordScrapeRequest(outcome string) {
	if m := global(); m != nil {
		m.scrapeRequests.WithLabelValues(outcome).Inc()
	}
}

// UpdateBreakerState sets the state gauge of the named circuit breaker.
func UpdateBreakerState(name string, state int) {
	if m := global(); m != nil {
		m.breakerState.WithLabelValues(name).Set(float64(state))
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if m := global(); m != nil {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if m := global(); m != nil {
		m.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if m := global(); m != nil {
		m.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	if m := global(); m != nil {
		m.workerActiveCount.Set(float64(count))
	}
}

// RecordWorkerTask counts a finished task by status and records its latency.
func RecordWorkerTask(status string, latencyMs float64) {
	if m := global(); m != nil {
		m.workerTasks.WithLabelValues(status).Inc()
		m.workerLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := global(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m := global(); m != nil {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if m := global(); m != nil {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return customRegistry
}
