package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Candidate stages counted by candidatesTotal.
const (
	stageExtracted    = "extracted"
	stageValidated    = "validated"
	stagePruned       = "pruned"
	stageDeduplicated = "deduplicated"
)

var (
	documentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geoextract",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total number of documents processed",
		},
	)

	blocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geoextract",
			Subsystem: "pipeline",
			Name:      "blocks_total",
			Help:      "Total number of text blocks produced by splitting",
		},
	)

	// Labels: stage (extracted, validated, pruned, deduplicated)
	candidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geoextract",
			Subsystem: "pipeline",
			Name:      "candidates_total",
			Help:      "Number of candidates surviving each pipeline stage",
		},
		[]string{"stage"},
	)

	resultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geoextract",
			Subsystem: "pipeline",
			Name:      "results_total",
			Help:      "Total number of locations returned after postprocessing",
		},
	)

	extractDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "geoextract",
			Subsystem: "pipeline",
			Name:      "extract_duration_seconds",
			Help:      "Duration of document extraction in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	registryLocations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "geoextract",
			Subsystem: "pipeline",
			Name:      "registry_locations",
			Help:      "Number of known locations in the most recently built registry",
		},
	)
)
