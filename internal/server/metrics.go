package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the mock API. Each instance
// owns its registry so tests can build as many servers as they like.
type Metrics struct {
	Requests    *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
	Logins      *prometheus.CounterVec
	Uploads     *prometheus.CounterVec
	UploadBytes prometheus.Counter
	registry    *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mockapi_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		Uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_uploads_total",
				Help: "Upload attempts by result",
			},
			[]string{"result"},
		),
		UploadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mockapi_upload_bytes_total",
				Help: "Bytes written to the upload directory",
			},
		),
		registry: registry,
	}

	registry.MustRegister(m.Requests, m.Latency, m.Logins, m.Uploads, m.UploadBytes)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// routeLabel keeps label cardinality fixed: unknown paths share one label.
func routeLabel(path string) string {
	switch path {
	case "/login", "/uploads":
		return path
	default:
		return "other"
	}
}

func (m *Metrics) recordRequest(method, path string, status int, latency time.Duration) {
	route := routeLabel(path)
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.Latency.WithLabelValues(route).Observe(latency.Seconds())
}

func (m *Metrics) recordLogin(result string) {
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) recordUpload(result string, bytes int) {
	m.Uploads.WithLabelValues(result).Inc()
	if bytes > 0 {
		m.UploadBytes.Add(float64(bytes))
	}
}

// NewOpsServer returns an HTTP server for operators: GET /metrics,
// GET /health and GET /live. It runs on its own listener so the API route
// table stays fixed.
func NewOpsServer(addr string, m *Metrics, store *UploadStore) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler(store)).Methods(http.MethodGet)
	r.HandleFunc("/live", liveHandler).Methods(http.MethodGet)

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
