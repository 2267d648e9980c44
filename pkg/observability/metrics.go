package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platinummonkey/tally/pkg/analytics"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Record store metrics
	StoreQueriesTotal  *prometheus.CounterVec
	StoreQueryDuration *prometheus.HistogramVec

	// Report export metrics
	ReportExportsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		StoreQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_store_queries_total",
				Help: "Total number of record store timestamp reads",
			},
			[]string{"activity", "status"},
		),
		StoreQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_store_query_duration_seconds",
				Help:    "Record store timestamp read duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"activity"},
		),

		ReportExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_report_exports_total",
				Help: "Total number of scheduled report exports",
			},
			[]string{"status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.StoreQueriesTotal,
		m.StoreQueryDuration,
		m.ReportExportsTotal,
	)

	return m
}

// QueryObserver records record store reads issued by the aggregator
func (m *Metrics) QueryObserver() analytics.QueryObserver {
	return func(activity analytics.ActivityType, duration time.Duration, err error) {
		status := "ok"
		if err != nil {
			status = analytics.KindOf(err).String()
		}
		m.StoreQueriesTotal.WithLabelValues(string(activity), status).Inc()
		m.StoreQueryDuration.WithLabelValues(string(activity)).Observe(duration.Seconds())
	}
}

// RecordExport counts one scheduled export outcome
func (m *Metrics) RecordExport(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ReportExportsTotal.WithLabelValues(status).Inc()
}

// RegisterCacheStats exposes lookup cache hit and miss counters read from stats
func (m *Metrics) RegisterCacheStats(stats func() (hits, misses int64)) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "tally_lookup_cache_hits_total",
			Help: "Total number of owner and role lookup cache hits",
		}, func() float64 {
			hits, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "tally_lookup_cache_misses_total",
			Help: "Total number of owner and role lookup cache misses",
		}, func() float64 {
			_, misses := stats()
			return float64(misses)
		}),
	)
}

// RegisterCacheErrors exposes failed shared lookup cache operations read from count
func (m *Metrics) RegisterCacheErrors(count func() int64) {
	m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "tally_lookup_cache_l2_errors_total",
		Help: "Total number of failed shared lookup cache reads and writes",
	}, func() float64 {
		return float64(count())
	}))
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// metricPath keeps label cardinality bounded for artifact downloads
func metricPath(path string) string {
	if strings.HasPrefix(path, "/artifacts/") {
		return "/artifacts"
	}
	return path
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := metricPath(r.URL.Path)
			status := strconv.Itoa(rw.statusCode)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			metrics.HTTPResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
