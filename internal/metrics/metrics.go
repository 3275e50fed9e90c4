// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GradingRequests counts pipeline requests by terminal outcome.
	GradingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grading_requests_total",
		Help: "Grading pipeline requests by outcome (graded, cached, too_short, error).",
	}, []string{"outcome"})

	// GraderFallbacks counts grading requests where the model response
	// could not be parsed and deterministic fallback scores were used.
	GraderFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grader_fallbacks_total",
		Help: "Model responses recovered via deterministic fallback scoring.",
	})

	// GraderCalls counts outbound calls to the grading model service.
	GraderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grader_calls_total",
		Help: "Outbound grading model calls by status (ok, error).",
	}, []string{"status"})
)
