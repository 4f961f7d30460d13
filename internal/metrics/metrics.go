// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeStatus      = "status"
	OutcomeContract    = "contract_violation"
	OutcomeTimeout     = "timeout"
	OutcomeUnreachable = "unreachable"
	OutcomeBreakerOpen = "breaker_open"
	OutcomeError       = "error"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_gateway_http_requests_total",
		Help: "Total HTTP requests handled by the gateway",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "telemetry_gateway_http_request_duration_seconds",
		Help:    "Latency of HTTP requests handled by the gateway",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_gateway_provider_requests_total",
		Help: "Outbound calls to the telemetry provider by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "telemetry_gateway_provider_request_duration_seconds",
		Help:    "Latency of outbound calls to the telemetry provider",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
