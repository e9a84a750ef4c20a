// Package metrics provides Prometheus metrics for the podium feature pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the podium service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline metrics
	rowsIngested          prometheus.Counter
	rowsEmitted           prometheus.Counter
	durationParseFailures *prometheus.CounterVec
	stageDuration         *prometheus.HistogramVec
	missingFeatureValues  *prometheus.CounterVec
	pipelineRuns          *prometheus.CounterVec
	pipelineDuration      prometheus.Histogram
	lastRunRows           prometheus.Gauge

	// Acquisition metrics
	acquisitionAttempts *prometheus.CounterVec
	racesSkipped        prometheus.Counter
	racesCollected      prometheus.Counter

	// Job queue and worker pool metrics
	queueSize    prometheus.Gauge
	workerActive prometheus.Gauge
	workerJobs   *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "features",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.rowsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_ingested_total"),
		Help:        "Result rows read into the pipeline",
		ConstLabels: labels,
	})

	m.rowsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_emitted_total"),
		Help:        "Feature rows produced by the pipeline",
		ConstLabels: labels,
	})

	m.durationParseFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("duration_parse_failures_total"),
		Help:        "Duration values that could not be parsed and were treated as missing",
		ConstLabels: labels,
	}, []string{"column"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("stage_duration_seconds"),
		Help:        "Wall time spent in each pipeline stage",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.missingFeatureValues = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("missing_feature_values_total"),
		Help:        "Emitted feature values that are missing (no prior history or no input)",
		ConstLabels: labels,
	}, []string{"feature"})

	m.pipelineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("runs_total"),
		Help:        "Pipeline runs by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("run_duration_seconds"),
		Help:        "Wall time of a full pipeline run",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.lastRunRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("last_run_rows"),
		Help:        "Row count of the most recent successful run",
		ConstLabels: labels,
	})

	m.acquisitionAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "acquisition",
		Name:        m.name("attempts_total"),
		Help:        "Session fetch attempts by session type and outcome",
		ConstLabels: labels,
	}, []string{"session", "outcome"})

	m.racesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "acquisition",
		Name:        m.name("races_skipped_total"),
		Help:        "Races skipped after exhausting fetch retries",
		ConstLabels: labels,
	})

	m.racesCollected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "acquisition",
		Name:        m.name("races_collected_total"),
		Help:        "Races merged into the results table",
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        m.name("size"),
		Help:        "Jobs waiting in the fetch queue",
		ConstLabels: labels,
	})

	m.workerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "worker",
		Name:        m.name("active"),
		Help:        "Workers currently running",
		ConstLabels: labels,
	})

	m.workerJobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "worker",
		Name:        m.name("jobs_total"),
		Help:        "Jobs handled by workers by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        m.name("requests_total"),
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        m.name("request_duration_ms"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "errors",
		Name:        m.name("by_component_total"),
		Help:        "Errors by component and kind",
		ConstLabels: labels,
	}, []string{"component", "kind"})
}

// RecordRowsIngested adds n to the ingested rows counter.
func RecordRowsIngested(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.rowsIngested.Add(float64(n))
	}
}

// RecordRowsEmitted adds n to the emitted rows counter.
func RecordRowsEmitted(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.rowsEmitted.Add(float64(n))
	}
}

// RecordDurationParseFailures counts unparseable duration values for a column.
func RecordDurationParseFailures(column string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.durationParseFailures.WithLabelValues(column).Add(float64(n))
	}
}

// RecordStageDuration observes the time spent in a pipeline stage.
func RecordStageDuration(stage string, d time.Duration) {
	if globalManager.enabled {
		globalManager.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// RecordMissingFeatureValues counts missing values emitted for a feature.
func RecordMissingFeatureValues(feature string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.missingFeatureValues.WithLabelValues(feature).Add(float64(n))
	}
}

// RecordPipelineRun records a finished run and its duration.
func RecordPipelineRun(outcome string, d time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.pipelineRuns.WithLabelValues(outcome).Inc()
	globalManager.pipelineDuration.Observe(d.Seconds())
}

// UpdateLastRunRows sets the row count of the latest successful run.
func UpdateLastRunRows(n int) {
	if globalManager.enabled {
		globalManager.lastRunRows.Set(float64(n))
	}
}

// RecordAcquisitionAttempt counts a session fetch attempt.
func RecordAcquisitionAttempt(session, outcome string) {
	if globalManager.enabled {
		globalManager.acquisitionAttempts.WithLabelValues(session, outcome).Inc()
	}
}

// RecordRaceSkipped counts a race dropped after retries were exhausted.
func RecordRaceSkipped() {
	if globalManager.enabled {
		globalManager.racesSkipped.Inc()
	}
}

// RecordRaceCollected counts a race merged into the results table.
func RecordRaceCollected() {
	if globalManager.enabled {
		globalManager.racesCollected.Inc()
	}
}

// UpdateQueueSize sets the number of queued jobs.
func UpdateQueueSize(n int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(n))
	}
}

// AddWorkerActive moves the running worker gauge by delta.
func AddWorkerActive(delta int) {
	if globalManager.enabled {
		globalManager.workerActive.Add(float64(delta))
	}
}

// RecordWorkerJob counts a handled job.
func RecordWorkerJob(outcome string) {
	if globalManager.enabled {
		globalManager.workerJobs.WithLabelValues(outcome).Inc()
	}
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, kind string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
	}
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
