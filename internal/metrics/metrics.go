package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the script/hive pipeline.
type Metrics struct {
	ScriptsGenerated  *prometheus.CounterVec
	GenerationLatency *prometheus.HistogramVec
	FeedbackRecorded  *prometheus.CounterVec
	LearningsRecorded *prometheus.CounterVec
	ReportRuns        *prometheus.CounterVec
	ReportSkipped     prometheus.Counter
	Deliveries        *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// New returns the process-wide metrics, registering them on first use.
func New() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			ScriptsGenerated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hive_scripts_generated_total",
					Help: "Script generation attempts by type and outcome",
				},
				[]string{"script_type", "outcome"},
			),
			GenerationLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "hive_generation_duration_seconds",
					Help:    "Latency of text generation calls",
					Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s to 64s
				},
				[]string{"outcome"},
			),
			FeedbackRecorded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hive_feedback_recorded_total",
					Help: "Feedback submissions persisted, by value",
				},
				[]string{"feedback"},
			),
			LearningsRecorded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hive_learnings_recorded_total",
					Help: "Hive learning upserts by result (created, incremented, failed)",
				},
				[]string{"result"},
			),
			ReportRuns: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hive_report_runs_total",
					Help: "Report generation runs by trigger and outcome",
				},
				[]string{"trigger", "outcome"},
			),
			ReportSkipped: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "hive_report_skipped_suggestions_total",
					Help: "Suggested approaches omitted from reports after generation failures",
				},
			),
			Deliveries: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hive_deliveries_total",
					Help: "Report deliveries by outcome",
				},
				[]string{"outcome"},
			),
		}
	})
	return sharedMetrics
}
