package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
)

var (
	dialogueOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payroll",
		Subsystem: "dialogue",
		Name:      "outcomes_total",
		Help:      "Handled messages by caller role and outcome.",
	}, []string{"role", "outcome"})

	turnLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payroll",
		Subsystem: "dialogue",
		Name:      "turn_seconds",
		Help:      "Time spent handling one inbound message.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"role"})
)

func recordTurn(role identity.Role, outcome string, latency time.Duration) {
	dialogueOutcomes.WithLabelValues(role.String(), outcome).Inc()
	turnLatency.WithLabelValues(role.String()).Observe(latency.Seconds())
}
