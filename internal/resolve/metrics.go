package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convo_resolutions_total",
		Help: "Pipeline outcomes by resolution stage.",
	}, []string{"stage"})

	stageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convo_resolve_stage_failures_total",
		Help: "Resolution stages that errored and were absorbed.",
	}, []string{"stage"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "convo_resolve_duration_seconds",
		Help:    "End-to-end resolution pipeline latency.",
		Buckets: prometheus.DefBuckets,
	})
)
