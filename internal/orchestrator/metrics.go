package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convo_actions_total",
		Help: "Outbound actions by tenant and kind.",
	}, []string{"tenant", "kind"})

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convo_rate_limited_total",
		Help: "Messages rejected by the rate limiter, by tenant.",
	}, []string{"tenant"})

	escalationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convo_escalations_total",
		Help: "Escalations created, by tenant and reason.",
	}, []string{"tenant", "reason"})
)
