package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskrequest",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of task request pipeline stages.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskrequest",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs broken down by outcome (ok, dry_run or the failed stage).",
	}, []string{"result"})
)

func recordStage(stage string, elapsed time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func recordRun(result string) {
	if result == "" {
		result = "unknown"
	}
	runsTotal.WithLabelValues(result).Inc()
}
