package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(recordingsProcessedTotal, stageFailuresTotal, stageLatencyMs, runsTotal)
}

var recordingsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recordings_processed_total",
		Help: "Total recordings handled by the pipeline, labeled by outcome.",
	},
	[]string{"status"}, // 'processed', 'failed', 'skipped'
)

var stageFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_stage_failures_total",
		Help: "Stage-level failures, labeled by stage name.",
	},
	[]string{"stage"},
)

var stageLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pipeline_stage_latency_ms",
		Help:    "Per-stage latency distribution in milliseconds.",
		Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	},
	[]string{"stage", "success"},
)

var runsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Total pipeline invocations.",
	},
)

func IncRecording(status string) {
	recordingsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncStageFailure(stage string) {
	stageFailuresTotal.WithLabelValues(norm(stage)).Inc()
}

func ObserveStage(stage string, d time.Duration, success bool) {
	stageLatencyMs.WithLabelValues(norm(stage), strconv.FormatBool(success)).
		Observe(float64(d.Milliseconds()))
}

func IncRun() {
	runsTotal.Inc()
}
