// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FlowGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_generations_total",
			Help: "Total number of structured generations by flow and status",
		},
		[]string{"flow", "status"},
	)

	FlowGenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_generation_failures_total",
			Help: "Total number of failed generations by flow and error code",
		},
		[]string{"flow", "error_code"},
	)

	FlowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "flow_duration_seconds",
			Help: "Duration of flow execution in seconds",
		},
		[]string{"flow"},
	)

	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_decisions_total",
			Help: "Total number of gating decisions by outcome",
		},
		[]string{"decision"},
	)

	KnowledgeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_lookups_total",
			Help: "Total number of knowledge lookups by source and status",
		},
		[]string{"source", "status"},
	)

	TurnsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "turns_in_flight",
			Help: "Number of user turns currently being orchestrated",
		},
	)
)
