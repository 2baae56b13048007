package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TriageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_requests_total",
			Help: "Total number of triage pipeline requests",
		},
		[]string{"outcome"},
	)

	DangerSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_danger_signals_total",
			Help: "Total number of danger-signal matches by rule category",
		},
		[]string{"category"},
	)

	TriageDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_decisions_total",
			Help: "Total number of triage decisions by level",
		},
		[]string{"level", "symptom"},
	)

	IntentClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_intent_classifications_total",
			Help: "Total number of intent classifications by intent",
		},
		[]string{"intent"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "triage_pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triage_active_conversations",
			Help: "Number of conversations currently held in the session store",
		},
	)
)
