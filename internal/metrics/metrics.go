package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline and inference counters exposed on /metrics.
var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crudecast_pipeline_runs_total",
		Help: "Daily pipeline runs by outcome.",
	}, []string{"outcome"})

	FeedSlices = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crudecast_feed_slices_total",
		Help: "Feed slice fetch attempts by result.",
	}, []string{"result"})

	InferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crudecast_inference_duration_seconds",
		Help:    "End-to-end inference latency.",
		Buckets: prometheus.DefBuckets,
	})

	InferenceRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crudecast_inference_runs_total",
		Help: "Inference invocations by outcome.",
	}, []string{"outcome"})

	HistoryRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crudecast_history_records",
		Help: "Prediction history records after the last reconcile.",
	})
)
