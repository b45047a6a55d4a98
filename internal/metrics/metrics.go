// Package metrics collects and exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthCollector is the subset the auth package records against.
type AuthCollector interface {
	RecordLogin(success bool)
	RecordRegistration()
	RecordTokenFailure()
}

// Collector registers and records the service's metrics.
type Collector struct {
	loginSuccess  prometheus.Counter
	loginFailure  prometheus.Counter
	registrations prometheus.Counter
	tokenFailures prometheus.Counter
	httpStatus    *prometheus.CounterVec
	latency       prometheus.Histogram
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assetbase_login_success_total",
			Help: "Successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assetbase_login_failure_total",
			Help: "Rejected login attempts.",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assetbase_registrations_total",
			Help: "Accounts created through registration.",
		}),
		tokenFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assetbase_token_failures_total",
			Help: "Bearer tokens rejected during verification.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assetbase_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetbase_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(c.loginSuccess, c.loginFailure, c.registrations, c.tokenFailures, c.httpStatus, c.latency)
	return c
}

func (c *Collector) RecordLogin(success bool) {
	if success {
		c.loginSuccess.Inc()
		return
	}
	c.loginFailure.Inc()
}

func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

func (c *Collector) RecordTokenFailure() {
	c.tokenFailures.Inc()
}

func (c *Collector) RecordRequest(statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.latency.Observe(duration.Seconds())
}

// Handler returns the scrape endpoint handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware records status and latency for every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.RecordRequest(sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
