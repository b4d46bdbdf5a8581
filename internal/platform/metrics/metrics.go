// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the SecurePass API.

Collectors are registered on an injected [prometheus.Registerer] rather than
the global default, so tests can build isolated registries.

Families:

  - securepass_http_*: request counts, latency and in-flight gauge.
  - securepass_auth_*: authentication attempts by method and outcome.
  - securepass_crypto_*: credential cipher failures by operation.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "securepass"

// # Label Values

const (
	MethodPassword = "password"
	MethodRegister = "register"
	MethodGoogle   = "google"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeLocked  = "locked"

	OperationEncrypt = "encrypt"
	OperationDecrypt = "decrypt"
)

// # HTTP Metrics

// HTTPMetrics holds Prometheus metrics for HTTP request tracking.
type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlightGauge   prometheus.Gauge
}

// NewHTTPMetrics creates and registers HTTP metrics on the given registry.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being processed.",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.InFlightGauge)
	return m
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (writer *statusWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

// Middleware records request metrics labelled by the chi route pattern.
//
// The pattern ("/api/credentials/{id}") is used instead of the raw path so
// credential ids never become label values. Unmatched requests share the
// "unmatched" route.
func (m *HTTPMetrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			m.InFlightGauge.Inc()
			defer m.InFlightGauge.Dec()

			startTime := time.Now()
			wrapped := &statusWriter{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrapped, request)

			route := "unmatched"
			if routeCtx := chi.RouteContext(request.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			status := strconv.Itoa(wrapped.status)
			m.RequestDuration.WithLabelValues(request.Method, route, status).Observe(time.Since(startTime).Seconds())
			m.RequestsTotal.WithLabelValues(request.Method, route, status).Inc()
		})
	}
}

// # Domain Metrics

// DomainMetrics counts security-relevant events. A nil *DomainMetrics is valid
// and records nothing.
type DomainMetrics struct {
	AuthAttempts   *prometheus.CounterVec
	CryptoFailures *prometheus.CounterVec
}

// NewDomainMetrics creates and registers the domain counters on the given registry.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	m := &DomainMetrics{
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		CryptoFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "failures_total",
			Help:      "Credential cipher failures by operation.",
		}, []string{"operation"}),
	}

	reg.MustRegister(m.AuthAttempts, m.CryptoFailures)
	return m
}

// AuthAttempt records one authentication attempt.
func (m *DomainMetrics) AuthAttempt(method, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(method, outcome).Inc()
}

// CryptoFailure records one failed encrypt or decrypt.
func (m *DomainMetrics) CryptoFailure(operation string) {
	if m == nil {
		return
	}
	m.CryptoFailures.WithLabelValues(operation).Inc()
}

// # Exposition

// Handler serves the collected metrics in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
