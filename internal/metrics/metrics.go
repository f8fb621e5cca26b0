package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Request handling metrics
var (
	OutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_outcomes_total",
			Help: "Total number of handled requests by outcome status.",
		},
		[]string{"status"},
	)

	IntentExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_intent_extractions_total",
			Help: "Total number of intent extractions by path (model, fallback, none).",
		},
		[]string{"path"},
	)

	CandidateResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_candidate_resolutions_total",
			Help: "Total number of candidate resolutions by path (model, fallback).",
		},
		[]string{"path"},
	)
)

// Subtitle pipeline metrics
var (
	SubtitleChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_subtitle_chunks_total",
			Help: "Total number of translated subtitle chunks by status.",
		},
		[]string{"status"},
	)

	SubtitleGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_subtitle_generations_total",
			Help: "Total number of subtitle pipeline runs by status.",
		},
		[]string{"status"},
	)

	SubtitlePipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_subtitle_pipeline_duration_seconds",
			Help:    "Duration of subtitle pipeline runs.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
)

func init() {
	prometheus.MustRegister(
		OutcomesTotal,
		IntentExtractionsTotal,
		CandidateResolutionsTotal,
		SubtitleChunksTotal,
		SubtitleGenerationsTotal,
		SubtitlePipelineDuration,
	)
}
