package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts completed forensic analyses by risk level.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensic_analyses_total",
			Help: "Total number of completed forensic analyses.",
		},
		[]string{"risk_level"},
	)

	// DuplicatesDetectedTotal counts duplicate identification numbers seen.
	DuplicatesDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_ids_detected_total",
			Help: "Total number of duplicate NOA identification numbers detected.",
		},
	)

	// ComparisonsTotal counts completed cross-document comparisons by risk.
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_comparisons_total",
			Help: "Total number of completed T1/NOA comparisons.",
		},
		[]string{"overall_risk"},
	)
)
