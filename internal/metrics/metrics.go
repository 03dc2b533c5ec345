// Package metrics defines Prometheus metrics for the secondhand client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shc"

// API metrics.
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of catalog API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "outcome"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of catalog API requests by outcome.",
	}, []string{"endpoint", "outcome"})
)

// Fetch metrics.
var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetches_total",
		Help:      "Total number of page fetches dispatched.",
	}, []string{"scope"})

	FetchSupersededTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_superseded_total",
		Help:      "Total number of page responses discarded because a newer fetch was dispatched.",
	}, []string{"scope"})

	FetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_failures_total",
		Help:      "Total number of applied page fetches that failed.",
	}, []string{"scope"})
)

// Mutation metrics.
var (
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of confirmed mutations by kind and result.",
	}, []string{"kind", "result"})
)

// Session metrics.
var (
	SessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions by target state.",
	}, []string{"state"})
)

// Fake catalog server metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mockapi",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of requests served by the fake catalog API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mockapi",
		Name:      "http_requests_total",
		Help:      "Total number of requests served by the fake catalog API.",
	}, []string{"method", "path", "status"})
)
