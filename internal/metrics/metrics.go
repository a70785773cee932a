package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes counters for processed items per operation, HTTP request
// instrumentation, a gauge for the last successful run and a histogram
// for database query duration.
type Metrics struct {
	Runs              *prometheus.CounterVec
	LastSuccessfulRun *prometheus.GaugeVec
	SlangsDetected    prometheus.Counter
	EmployeesFlagged  *prometheus.CounterVec
	TablesExported    prometheus.Counter
	MessagesSent      *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	DBQueryDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers every collector
// with the provided Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_runs_total",
			Help: "Total times an operation has successfully or unsuccessfully completed.",
		}, []string{"type", "status"}),
		LastSuccessfulRun: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "themis_last_successful_run_timestamp",
			Help: "Last time when an operation run was successful",
		}, []string{"type"}),
		SlangsDetected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "themis_slangs_detected_total",
			Help: "Total number of slang words found in employee feedback.",
		}),
		EmployeesFlagged: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_employees_flagged_total",
			Help: "Total number of flag reasons assigned to employees.",
		}, []string{"reason"}),
		TablesExported: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "themis_tables_exported_total",
			Help: "Total number of database tables written to flat files.",
		}),
		MessagesSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_messages_sent_total",
			Help: "Total number of onboarding messages by dispatch status.",
		}, []string{"status"}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_http_requests_total",
			Help: "Total number of HTTP requests served by the API.",
		}, []string{"handler", "code", "method"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "themis_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler", "code", "method"}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "themis_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'get_feedback', 'read_table'
	}

	for _, opType := range []string{"detect_slangs", "flag_employees", "export_tables", "onboarding"} {
		metrics.Runs.WithLabelValues(opType, "success")
		metrics.Runs.WithLabelValues(opType, "failure")
	}

	return metrics
}

// ObserveRun records the outcome of a single operation run.
func (m *Metrics) ObserveRun(opType string, err error, unixTime float64) {
	if err != nil {
		m.Runs.WithLabelValues(opType, "failure").Inc()
		return
	}
	m.Runs.WithLabelValues(opType, "success").Inc()
	m.LastSuccessfulRun.WithLabelValues(opType).Set(unixTime)
}
