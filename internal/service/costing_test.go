package service

import (
	"errors"
	"math"
	"testing"

	"catering/backend/internal/domain"
	"catering/backend/internal/store"
)

func TestCalculateCostingUsesStoredCatalog(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.CalculateCosting(staffCtx(), domain.CostingRequest{ProductID: "itm-chicken-stew", Quantity: 10})
	if err != nil {
		t.Fatalf("calculate costing failed: %v", err)
	}

	if result.RequiredPortions != 20 {
		t.Fatalf("expected 20 portions, got %d", result.RequiredPortions)
	}
	if result.RevenueCents != 4500000 {
		t.Fatalf("expected revenue 4500000, got %d", result.RevenueCents)
	}
	if len(result.Breakdown) != 4 {
		t.Fatalf("expected 4 breakdown lines, got %d", len(result.Breakdown))
	}
	// chicken 0.12kg x 20 portions x 450000
	if result.Breakdown[0].TotalCostCents != 1080000 {
		t.Fatalf("expected chicken line 1080000, got %d", result.Breakdown[0].TotalCostCents)
	}
	if result.GrossMarginCents != result.RevenueCents-result.TotalIngredientCostCents {
		t.Fatalf("expected margin %d, got %d", result.RevenueCents-result.TotalIngredientCostCents, result.GrossMarginCents)
	}
}

func TestCalculateCostingUnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.CalculateCosting(staffCtx(), domain.CostingRequest{ProductID: "itm-missing", Quantity: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CalculateCosting(staffCtx(), domain.CostingRequest{ProductID: "itm-jollof", Quantity: 0}); !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero quantity, got %v", err)
	}
}

func TestCalculateCostingRejectsOutOfRangeQuantity(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CalculateCosting(staffCtx(), domain.CostingRequest{ProductID: "itm-chicken-stew", Quantity: math.MaxInt64 / 100000})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCalculateCostingCustomItemPlaceholder(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.CalculateCosting(staffCtx(), domain.CostingRequest{ProductID: "custom-ice-sculpture", Quantity: 1})
	if err != nil {
		t.Fatalf("calculate costing failed: %v", err)
	}
	if result.TotalIngredientCostCents != 0 || len(result.Breakdown) != 0 {
		t.Fatalf("expected empty placeholder costing, got %+v", result)
	}
}

func TestQuoteOrderTotalsLinesAndReportsUnknown(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.QuoteOrder(staffCtx(), domain.OrderQuoteRequest{
		ReferenceID: "evt-wedding-01",
		Lines: []domain.OrderQuoteLine{
			{ProductID: "itm-chicken-stew", Quantity: 10},
			{ProductID: "itm-chair-hire", Quantity: 100},
			{ProductID: "itm-missing", Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("quote order failed: %v", err)
	}

	if resp.ReferenceID != "evt-wedding-01" {
		t.Fatalf("expected reference evt-wedding-01, got %q", resp.ReferenceID)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 priced items, got %d", len(resp.Items))
	}
	if len(resp.UnknownProductIDs) != 1 || resp.UnknownProductIDs[0] != "itm-missing" {
		t.Fatalf("expected itm-missing reported unknown, got %v", resp.UnknownProductIDs)
	}

	var cost, revenue int64
	for _, item := range resp.Items {
		cost += item.TotalIngredientCostCents
		revenue += item.RevenueCents
	}
	if resp.TotalIngredientCostCents != cost {
		t.Fatalf("expected total cost %d, got %d", cost, resp.TotalIngredientCostCents)
	}
	if resp.RevenueCents != revenue || resp.RevenueCents != 4500000+15000000 {
		t.Fatalf("expected revenue %d, got %d", 4500000+15000000, resp.RevenueCents)
	}
	if resp.GrossMarginCents != resp.RevenueCents-resp.TotalIngredientCostCents {
		t.Fatalf("expected margin %d, got %d", resp.RevenueCents-resp.TotalIngredientCostCents, resp.GrossMarginCents)
	}
	if resp.FlaggedLines != 0 {
		t.Fatalf("expected no flagged lines, got %d", resp.FlaggedLines)
	}
}

func TestQuoteOrderRejectsOverflowingOrderTotal(t *testing.T) {
	svc, _ := newTestService()

	// each line fits in int64 on its own; their sum does not
	qty := int(math.MaxInt64 / 150000)
	_, err := svc.QuoteOrder(staffCtx(), domain.OrderQuoteRequest{
		Lines: []domain.OrderQuoteLine{
			{ProductID: "itm-chair-hire", Quantity: qty},
			{ProductID: "itm-chair-hire", Quantity: qty},
		},
	})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	single, err := svc.QuoteOrder(staffCtx(), domain.OrderQuoteRequest{
		Lines: []domain.OrderQuoteLine{{ProductID: "itm-chair-hire", Quantity: qty}},
	})
	if err != nil {
		t.Fatalf("expected a single large line to price, got %v", err)
	}
	if single.RevenueCents != int64(qty)*150000 {
		t.Fatalf("expected revenue %d, got %d", int64(qty)*150000, single.RevenueCents)
	}
}

func TestQuoteOrderRejectsEmptyOrder(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.QuoteOrder(staffCtx(), domain.OrderQuoteRequest{}); !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestUpsertIngredientChangesNextCosting(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	before, err := svc.CalculateCosting(ctx, domain.CostingRequest{ProductID: "itm-chicken-stew", Quantity: 10})
	if err != nil {
		t.Fatalf("calculate costing failed: %v", err)
	}

	market := int64(500000)
	if _, err := svc.UpsertIngredient(ctx, domain.Ingredient{
		ID: "ing-chicken", Name: "Chicken", Unit: "kg", CurrentCostCents: 450000, MarketPriceCents: &market, StockLevel: 80,
	}); err != nil {
		t.Fatalf("upsert ingredient failed: %v", err)
	}

	after, err := svc.CalculateCosting(ctx, domain.CostingRequest{ProductID: "itm-chicken-stew", Quantity: 10})
	if err != nil {
		t.Fatalf("calculate costing failed: %v", err)
	}
	if after.Breakdown[0].UnitCostCents != 500000 {
		t.Fatalf("expected market price 500000 to win, got %d", after.Breakdown[0].UnitCostCents)
	}
	if after.TotalIngredientCostCents != before.TotalIngredientCostCents+120000 {
		t.Fatalf("expected cost to rise by 120000, got %d -> %d", before.TotalIngredientCostCents, after.TotalIngredientCostCents)
	}

	if _, err := svc.UpsertIngredient(staffCtx(), domain.Ingredient{Name: "Salt"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
