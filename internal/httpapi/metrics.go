package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus counters for the HTTP boundary and the
// simulation runs it drives.
type Metrics struct {
	requestsTotal *prometheus.CounterVec
	requestSecs   *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	runIAE        prometheus.Histogram
}

// NewMetrics constructs and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distilltwin_http_requests_total",
			Help: "Total HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		requestSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "distilltwin_http_request_duration_seconds",
			Help:    "HTTP request duration by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distilltwin_runs_total",
			Help: "Total engine runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		runIAE: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "distilltwin_run_total_iae",
			Help:    "Summed IAE across the six control loops per run.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		}),
	}
	prometheus.MustRegister(m.requestsTotal, m.requestSecs, m.runsTotal, m.runIAE)
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

// Wrap instruments next with per-route request counts and latency.
func (m *Metrics) Wrap(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.requestSecs.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveRun(mode, outcome string, totalIAE float64) {
	m.runsTotal.WithLabelValues(mode, outcome).Inc()
	if outcome == "ok" {
		m.runIAE.Observe(totalIAE)
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
