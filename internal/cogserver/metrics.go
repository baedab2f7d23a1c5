// internal/cogserver/metrics.go
package cogserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cog_step_outcomes_total",
		Help: "Step executions by step id and terminal outcome.",
	}, []string{"step", "outcome"})

	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cog_step_duration_seconds",
		Help:    "Wall time of step executions, platform round trips included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})

	sessionLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cog_session_logins_total",
		Help: "Sessions created by auth strategy.",
	}, []string{"strategy"})
)
