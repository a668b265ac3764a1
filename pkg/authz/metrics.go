package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payroll",
		Subsystem: "authz",
		Name:      "decisions_total",
		Help:      "Authorization decisions broken down by action and result.",
	}, []string{"action", "result"})

	decisionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payroll",
		Subsystem: "authz",
		Name:      "latency_seconds",
		Help:      "Latency distribution for authorization decisions.",
		Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	}, []string{"result"})
)

func recordDecision(action string, allowed bool, latency time.Duration) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	decisions.WithLabelValues(action, result).Inc()
	decisionLatency.WithLabelValues(result).Observe(latency.Seconds())
}
