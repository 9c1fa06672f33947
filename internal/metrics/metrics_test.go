package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequisitionOperationOutcome(t *testing.T) {
	m := New()

	m.RequisitionOperation("approve", nil)
	m.RequisitionOperation("approve", nil)
	m.RequisitionOperation("approve", errors.New("boom"))

	if got := testutil.ToFloat64(m.requisitionOps.WithLabelValues("approve", "ok")); got != 2 {
		t.Fatalf("expected 2 ok approvals, got %v", got)
	}
	if got := testutil.ToFloat64(m.requisitionOps.WithLabelValues("approve", "error")); got != 1 {
		t.Fatalf("expected 1 failed approval, got %v", got)
	}
}

func TestFundMovementIgnoresNonPositive(t *testing.T) {
	m := New()

	m.FundMovement("Outflow", "Cash", 2500)
	m.FundMovement("Outflow", "Cash", 0)
	m.FundMovement("Outflow", "Cash", -10)

	if got := testutil.ToFloat64(m.fundMovementCents.WithLabelValues("Outflow", "Cash")); got != 2500 {
		t.Fatalf("expected 2500 cents, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RequisitionOperation("approve", nil)
	m.CostingFlag("Missing from Inventory")
	m.SyncFailure("requisitions", "dropped")
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.CostingRun("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "catering_costing_runs_total") {
		t.Fatalf("expected costing runs metric in output")
	}
}
