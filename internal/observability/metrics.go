// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// Metrics contains the Jobify Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	IdentityEventsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the Jobify collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobify_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobify_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		IdentityEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobify_identity_events_total",
				Help: "Identity operations by event and outcome",
			},
			[]string{"event", "outcome"},
		),
	}

	reg.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.IdentityEventsTotal)
	return m
}

// ObserveHTTP records one finished request. route is the matched pattern,
// not the raw path, to bound label cardinality.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordEvent implements identity.EventRecorder.
func (m *Metrics) RecordEvent(event, outcome string) {
	m.IdentityEventsTotal.WithLabelValues(event, outcome).Inc()
}

var _ identity.EventRecorder = (*Metrics)(nil)
