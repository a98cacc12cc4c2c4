// Package metrics holds the Prometheus collectors for the service.
//
//	r.Use(metrics.Middleware())
//	r.Handle("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "diamant"

// Registry is scraped at /metrics. It holds the Go and process collectors
// plus everything declared below.
var Registry = prometheus.NewRegistry()

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
	Registry.MustRegister(c)
	return c
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
	Registry.MustRegister(h)
	return h
}

// HTTP
var (
	RequestDuration = histogram("http", "request_duration_seconds",
		"Latency of storefront and back-office requests.", prometheus.DefBuckets, "method", "route", "status")
	RequestTotal = counter("http", "requests_total",
		"Requests served, by route pattern and status.", "method", "route", "status")
	ResponseSize = histogram("http", "response_size_bytes",
		"Body sizes; optimized images dominate the upper buckets.",
		[]float64{256, 4 << 10, 64 << 10, 512 << 10, 4 << 20}, "method", "route")
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_in_flight",
		Help: "Requests currently being served, websockets and SSE streams included.",
	})
)

// Storage and background work
var (
	DBQueryDuration = histogram("db", "query_duration_seconds",
		"Statement latency by gorm callback (select, insert, update, delete).",
		[]float64{.001, .005, .01, .025, .05, .1, .5, 1}, "operation")
	CacheHits   = counter("cache", "hits_total", "Catalog and image cache hits.", "driver")
	CacheMisses = counter("cache", "misses_total", "Catalog and image cache misses.", "driver")

	QueueJobsProcessed = counter("queue", "jobs_processed_total",
		"Jobs run by the queue workers, by job type and outcome.", "job_type", "status")
	QueueJobDuration = histogram("queue", "job_duration_seconds",
		"Time spent in a job's Handle.", prometheus.DefBuckets, "job_type")
)

// Boutique
var (
	OrdersPlaced    = counter("shop", "orders_placed_total", "Orders placed, by payment method.", "payment_method")
	ImagesOptimized = counter("images", "optimized_total", "Optimized images served, by format and cache result.", "format", "cache")
	MailsSent       = counter("mail", "sent_total", "Outgoing mails by template and result.", "template", "status")
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestInFlight,
	)
}

// MustRegister adds collectors owned by other packages (gRPC interceptors).
func MustRegister(c ...prometheus.Collector) {
	Registry.MustRegister(c...)
}

// Handler serves the registry in text and OpenMetrics formats.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveDBQuery records how long a statement took:
//
//	defer metrics.ObserveDBQuery("select", time.Now())
func ObserveDBQuery(operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordQueueJob counts one job outcome and its duration.
func RecordQueueJob(jobType, status string, start time.Time) {
	QueueJobsProcessed.WithLabelValues(jobType, status).Inc()
	QueueJobDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}

// Middleware observes every request. Routes are labelled by chi pattern
// ("/api/products/{id}"), requests no route matched by "unmatched".
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			start := time.Now()
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route, code := pattern(r), strconv.Itoa(rec.status)
			RequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, route, code).Inc()
			ResponseSize.WithLabelValues(r.Method, route).Observe(float64(rec.bytes))
		})
	}
}

func pattern(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return "unmatched"
	}
	return rc.RoutePattern()
}

type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *recorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Flush keeps the admin SSE feed streaming through the middleware.
func (w *recorder) Flush() {
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

// Hijack hands the connection to the websocket upgrader.
func (w *recorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.status = http.StatusSwitchingProtocols
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *recorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }
