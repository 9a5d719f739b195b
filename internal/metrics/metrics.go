// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts generation runs.
	// Labels:
	//   - provider: "groq", "openrouter", "lorem"
	//   - outcome: "success", "error", "canceled"
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terraai_generations_total",
			Help: "Total number of blueprint generations",
		},
		[]string{"provider", "outcome"},
	)

	// GenerationDuration measures a generation from request to last chunk.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "terraai_generation_duration_seconds",
			Help:    "Duration of blueprint generations in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider"},
	)

	// ProjectSavesTotal counts idle-saves.
	// Labels:
	//   - action: "create", "update"
	//   - outcome: "success", "quota_exceeded", "error"
	ProjectSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terraai_project_saves_total",
			Help: "Total number of project saves",
		},
		[]string{"action", "outcome"},
	)

	// QuotaRejectionsTotal counts requests refused by a daily limit.
	QuotaRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terraai_quota_rejections_total",
			Help: "Total number of requests rejected by a daily plan limit",
		},
		[]string{"plan", "kind"},
	)

	// PlanDowngradesTotal counts lazy expiry downgrades.
	PlanDowngradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terraai_plan_downgrades_total",
			Help: "Total number of expired plans downgraded to FREE",
		},
		[]string{"from_plan"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "terraai_llm_circuit_breaker_state",
			Help: "State of the LLM upstream circuit breaker",
		},
		[]string{"name"},
	)

	// ActiveSessions is the number of in-memory generation sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terraai_active_sessions",
			Help: "Number of in-memory generation sessions",
		},
	)
)
