package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ledger and costing instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	requisitionOps    *prometheus.CounterVec
	fundMovementCents *prometheus.CounterVec
	costingRuns       *prometheus.CounterVec
	costingFlags      *prometheus.CounterVec
	syncFailures      *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requisitionOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catering_requisition_operations_total",
		Help: "Requisition ledger operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	fundMovementCents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catering_fund_movement_cents_total",
		Help: "Cents moved out of or back into funding sources.",
	}, []string{"direction", "payment_method"})
	costingRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catering_costing_runs_total",
		Help: "Item costing calculations by result.",
	}, []string{"result"})
	costingFlags := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catering_costing_flagged_lines_total",
		Help: "Costing breakdown lines flagged for review.",
	}, []string{"detail"})
	syncFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catering_remote_sync_failures_total",
		Help: "Best-effort remote sync writes that failed or were dropped.",
	}, []string{"collection", "reason"})

	registry.MustRegister(requisitionOps, fundMovementCents, costingRuns, costingFlags, syncFailures)

	return &Metrics{
		registry:          registry,
		requisitionOps:    requisitionOps,
		fundMovementCents: fundMovementCents,
		costingRuns:       costingRuns,
		costingFlags:      costingFlags,
		syncFailures:      syncFailures,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequisitionOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requisitionOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) FundMovement(direction string, paymentMethod string, cents int64) {
	if m == nil || cents <= 0 {
		return
	}
	m.fundMovementCents.WithLabelValues(direction, paymentMethod).Add(float64(cents))
}

func (m *Metrics) CostingRun(result string) {
	if m == nil {
		return
	}
	m.costingRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) CostingFlag(detail string) {
	if m == nil {
		return
	}
	m.costingFlags.WithLabelValues(detail).Inc()
}

func (m *Metrics) SyncFailure(collection string, reason string) {
	if m == nil {
		return
	}
	m.syncFailures.WithLabelValues(collection, reason).Inc()
}
