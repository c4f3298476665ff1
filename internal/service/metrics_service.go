package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the solver runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runTotal        *prometheus.CounterVec
	hardViolations  prometheus.Gauge
	softCost        prometheus.Gauge
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solver_run_duration_seconds",
		Help:    "Duration of scheduling runs in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	}, []string{"kind"})

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_runs_total",
		Help: "Total number of scheduling runs",
	}, []string{"kind", "outcome"})

	hardViolations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_hard_violations",
		Help: "Hard violations in the last committed schedule",
	})

	softCost := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_soft_cost",
		Help: "Soft cost of the last committed schedule",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, runDuration, runTotal, hardViolations, softCost, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runDuration:     runDuration,
		runTotal:        runTotal,
		hardViolations:  hardViolations,
		softCost:        softCost,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveRequest records one HTTP request.
func (s *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	s.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveRun records one scheduling run and its resulting quality.
func (s *MetricsService) ObserveRun(kind, outcome string, duration time.Duration, hardViolations int, softCost float64) {
	s.runDuration.WithLabelValues(kind).Observe(duration.Seconds())
	s.runTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == "success" {
		s.hardViolations.Set(float64(hardViolations))
		s.softCost.Set(softCost)
	}
}
