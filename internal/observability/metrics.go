package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tsmigrate_extraction_seconds",
		Help:    "Time spent extracting a specification from a legacy test.",
		Buckets: prometheus.DefBuckets,
	})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tsmigrate_generation_seconds",
		Help:    "Time spent rendering a skeleton from a specification.",
		Buckets: prometheus.DefBuckets,
	})

	TestsTranslatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsmigrate_tests_translated_total",
		Help: "Total number of legacy tests translated successfully.",
	})

	TestsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsmigrate_tests_failed_total",
		Help: "Total number of legacy tests whose translation failed.",
	})

	VariationsNeedingReviewTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsmigrate_variations_needing_review_total",
		Help: "Total number of dispatch branches left for manual review.",
	})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tsmigrate_batch_seconds",
		Help:    "Wall time of a whole batch run.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tsmigrate_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
