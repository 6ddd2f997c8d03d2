package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide Prometheus collectors.
type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	statementsIngested   *prometheus.CounterVec
	transactionsIngested prometheus.Counter
	rowsRejected         prometheus.Counter
	optimizerRuns        prometheus.Counter
	catalogReloads       prometheus.Counter
}

// New registers the collectors on the default registry. Call once per process.
func New() *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		statementsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statements_ingested_total",
			Help: "Total statements ingested by bank.",
		}, []string{"bank"}),
		transactionsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transactions_ingested_total",
			Help: "Total transaction rows persisted from statements.",
		}),
		rowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statement_rows_rejected_total",
			Help: "Total statement rows rejected during parse or normalization.",
		}),
		optimizerRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "optimizer_runs_total",
			Help: "Total reward optimizer runs.",
		}),
		catalogReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Total reward catalog reloads.",
		}),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.statementsIngested,
		m.transactionsIngested,
		m.rowsRejected,
		m.optimizerRuns,
		m.catalogReloads,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler records request counts and latency under the given route label.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes the default registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) StatementIngested(bank string) {
	if m == nil {
		return
	}
	m.statementsIngested.WithLabelValues(bank).Inc()
}

func (m *Metrics) TransactionsIngested(count int) {
	if m == nil {
		return
	}
	m.transactionsIngested.Add(float64(count))
}

func (m *Metrics) RowsRejected(count int) {
	if m == nil {
		return
	}
	m.rowsRejected.Add(float64(count))
}

func (m *Metrics) OptimizerRun() {
	if m == nil {
		return
	}
	m.optimizerRuns.Inc()
}

func (m *Metrics) CatalogReloaded() {
	if m == nil {
		return
	}
	m.catalogReloads.Inc()
}
