package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing, so components can run unmetered in tests.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// File operation metrics
	FileOpsTotal   *prometheus.CounterVec
	FileOpErrors   *prometheus.CounterVec
	FileOpDuration *prometheus.HistogramVec

	// Search metrics
	SearchesTotal        *prometheus.CounterVec
	SearchDuration       *prometheus.HistogramVec
	SearchMatchesTotal   *prometheus.CounterVec
	SearchSkippedEntries *prometheus.CounterVec
	SearchLimitHits      *prometheus.CounterVec

	// Store metrics
	StoreFiles prometheus.Gauge
	StoreBytes prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector registered on the default
// Prometheus registry. Call it once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harborfs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harborfs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		FileOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harborfs_file_ops_total",
				Help: "Total number of file operations by op",
			},
			[]string{"op"},
		),
		FileOpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harborfs_file_op_errors_total",
				Help: "File operation failures by op and error code",
			},
			[]string{"op", "code"},
		),
		FileOpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harborfs_file_op_duration_seconds",
				Help:    "File operation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"op"},
		),

		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harborfs_searches_total",
				Help: "Total number of search invocations by kind",
			},
			[]string{"kind"},
		),
		SearchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harborfs_search_duration_seconds",
				Help:    "Search invocation duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"kind"},
		),
		SearchMatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harborfs_search_matches_total",
				Help: "Total search matches reported by kind",
			},
			[]string{"kind"},
		),
		SearchSkippedEntries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harborfs_search_skipped_entries_total",
				Help: "Entries skipped during traversal (unreadable subtree or undecodable file)",
			},
			[]string{"kind"},
		),
		SearchLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harborfs_search_limit_hits_total",
				Help: "Searches that stopped early because maxResults was reached",
			},
			[]string{"kind"},
		),

		StoreFiles: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "harborfs_store_files",
				Help: "Files currently held by the backing store",
			},
		),
		StoreBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "harborfs_store_bytes",
				Help: "Bytes currently held by the backing store",
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "harborfs_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFileOp records one facade operation and its outcome.
func (m *Metrics) RecordFileOp(op string, duration time.Duration, errCode string) {
	if m == nil {
		return
	}
	m.FileOpsTotal.WithLabelValues(op).Inc()
	m.FileOpDuration.WithLabelValues(op).Observe(duration.Seconds())
	if errCode != "" {
		m.FileOpErrors.WithLabelValues(op, errCode).Inc()
	}
}

// RecordSearch records one search invocation.
func (m *Metrics) RecordSearch(kind string, duration time.Duration, matches, skipped int, limitHit bool) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(kind).Inc()
	m.SearchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.SearchMatchesTotal.WithLabelValues(kind).Add(float64(matches))
	m.SearchSkippedEntries.WithLabelValues(kind).Add(float64(skipped))
	if limitHit {
		m.SearchLimitHits.WithLabelValues(kind).Inc()
	}
}

// SetStoreUsage updates the backing store gauges.
func (m *Metrics) SetStoreUsage(files, bytes int64) {
	if m == nil {
		return
	}
	m.StoreFiles.Set(float64(files))
	m.StoreBytes.Set(float64(bytes))
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	if m == nil {
		return
	}
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
