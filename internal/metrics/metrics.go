// Package metrics holds the pipeline counters shared by the use cases.
// HTTP request metrics live with the middleware.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Gated analysis actions by kind (report|medicine) and outcome",
		},
		[]string{"kind", "outcome"},
	)
	medicineCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medicine_cache_total",
			Help: "Medicine cache lookups by result (hit|miss)",
		},
		[]string{"result"},
	)
	extractionFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_fallback_total",
			Help: "Vision-model fallbacks by reason",
		},
		[]string{"reason"},
	)
	generationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_failures_total",
			Help: "Explanation generation failures by cause (transport|schema)",
		},
		[]string{"cause"},
	)
)

func init() {
	prometheus.MustRegister(
		analysesTotal,
		medicineCacheTotal,
		extractionFallbackTotal,
		generationFailuresTotal,
	)
}

// ObserveAnalysis counts a finished gated action.
func ObserveAnalysis(kind, outcome string) {
	analysesTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveCache counts a medicine cache lookup.
func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	medicineCacheTotal.WithLabelValues(result).Inc()
}

// ObserveFallback counts a switch from OCR/markup to the vision model.
func ObserveFallback(reason string) {
	extractionFallbackTotal.WithLabelValues(reason).Inc()
}

// ObserveGenerationFailure counts a failed generator call.
func ObserveGenerationFailure(cause string) {
	generationFailuresTotal.WithLabelValues(cause).Inc()
}
