package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Journal metrics
	tradesRecorded *prometheus.CounterVec
	parseErrors    *prometheus.CounterVec
	reportsSent    *prometheus.CounterVec
	alertsFired    *prometheus.CounterVec
	updates        *prometheus.CounterVec
	unauthorized   prometheus.Counter
	tradesToday    *prometheus.GaugeVec
	jobDuration    *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Journal metrics
	r.tradesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_trades_recorded_total",
			Help: "Total number of trades recorded",
		},
		[]string{"category"},
	)
	r.parseErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_parse_errors_total",
			Help: "Total number of rejected trade messages",
		},
		[]string{"code"},
	)
	r.reportsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_reports_sent_total",
			Help: "Total number of reports delivered to notifiers",
		},
		[]string{"kind", "status"},
	)
	r.alertsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_alerts_fired_total",
			Help: "Total number of alert warnings issued",
		},
		[]string{"scope"},
	)
	r.updates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_updates_total",
			Help: "Total number of bot messages handled",
		},
		[]string{"kind"},
	)
	r.unauthorized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_unauthorized_total",
			Help: "Total number of messages rejected from non-admin users",
		},
	)
	r.tradesToday = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "journal_trades_today",
			Help: "Number of trades recorded today",
		},
		[]string{"category"},
	)
	r.jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journal_job_duration_seconds",
			Help:    "Scheduled job duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"job"},
	)

	reg.MustRegister(r.tradesRecorded)
	reg.MustRegister(r.parseErrors)
	reg.MustRegister(r.reportsSent)
	reg.MustRegister(r.alertsFired)
	reg.MustRegister(r.updates)
	reg.MustRegister(r.unauthorized)
	reg.MustRegister(r.tradesToday)
	reg.MustRegister(r.jobDuration)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordTrade records a saved trade.
func (r *Registry) RecordTrade(category string) {
	r.tradesRecorded.WithLabelValues(category).Inc()
}

// RecordParseError records a rejected trade message by error code.
func (r *Registry) RecordParseError(code string) {
	r.parseErrors.WithLabelValues(code).Inc()
}

// RecordReport records a report delivery attempt.
func (r *Registry) RecordReport(kind, status string) {
	r.reportsSent.WithLabelValues(kind, status).Inc()
}

// RecordAlerts records fired alert warnings.
func (r *Registry) RecordAlerts(scope string, n int) {
	if n > 0 {
		r.alertsFired.WithLabelValues(scope).Add(float64(n))
	}
}

// RecordUpdate records a handled bot message.
func (r *Registry) RecordUpdate(kind string) {
	r.updates.WithLabelValues(kind).Inc()
}

// RecordUnauthorized records a rejected message.
func (r *Registry) RecordUnauthorized() {
	r.unauthorized.Inc()
}

// SetTradesToday publishes today's trade counts.
func (r *Registry) SetTradesToday(strategy, impulse int) {
	r.tradesToday.WithLabelValues("strategy").Set(float64(strategy))
	r.tradesToday.WithLabelValues("impulse").Set(float64(impulse))
}

// RecordJob records a scheduled job run.
func (r *Registry) RecordJob(job string, duration float64) {
	r.jobDuration.WithLabelValues(job).Observe(duration)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
