package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

var accrualsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "payroll",
	Subsystem: "ledger",
	Name:      "accruals_total",
	Help:      "Committed accrual records by kind.",
}, []string{"kind"})

// CountAccrual is an event bus handler for *accrual.RecordedEvent.
func CountAccrual(e *accrual.RecordedEvent) {
	accrualsRecorded.WithLabelValues(string(e.Record.Kind)).Inc()
}
