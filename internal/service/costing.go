package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"catering/backend/internal/costing"
	"catering/backend/internal/domain"
	"catering/backend/internal/store"
)

type catalog struct {
	inventory   []domain.InventoryItem
	recipes     []domain.Recipe
	ingredients []domain.Ingredient
}

func (s *Service) loadCatalog(ctx context.Context) (catalog, error) {
	inventory, err := s.repo.ListInventoryItems(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("list inventory items: %w", err)
	}
	recipes, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("list recipes: %w", err)
	}
	ingredients, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("list ingredients: %w", err)
	}
	return catalog{inventory: inventory, recipes: recipes, ingredients: ingredients}, nil
}

// CalculateCosting prices one product against the current catalog. An
// unknown, non-custom product id yields store.ErrNotFound and a costing whose
// amounts overflow yields store.ErrInvalidRequest.
func (s *Service) CalculateCosting(ctx context.Context, req domain.CostingRequest) (domain.ItemCosting, error) {
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" || req.Quantity < 1 {
		return domain.ItemCosting{}, store.ErrInvalidRequest
	}

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return domain.ItemCosting{}, err
	}
	result, err := s.engine.Calculate(req.ProductID, req.Quantity, cat.inventory, cat.recipes, cat.ingredients, req.QtyOverrides)
	if err != nil {
		return domain.ItemCosting{}, s.costingFailure(req.ProductID, err)
	}
	if result == nil {
		s.metrics.CostingRun("unknown_product")
		return domain.ItemCosting{}, store.ErrNotFound
	}
	s.recordCosting(result)
	return *result, nil
}

// QuoteOrder prices every line of an order and totals projected revenue,
// ingredient cost and margin. Unknown products are reported, not fatal; a
// line or order total beyond the cent range fails the whole quote.
func (s *Service) QuoteOrder(ctx context.Context, req domain.OrderQuoteRequest) (domain.OrderQuoteResponse, error) {
	if len(req.Lines) == 0 {
		return domain.OrderQuoteResponse{}, store.ErrInvalidRequest
	}
	for _, line := range req.Lines {
		if strings.TrimSpace(line.ProductID) == "" || line.Quantity < 1 {
			return domain.OrderQuoteResponse{}, store.ErrInvalidRequest
		}
	}

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return domain.OrderQuoteResponse{}, err
	}

	resp := domain.OrderQuoteResponse{
		ReferenceID: strings.TrimSpace(req.ReferenceID),
		Items:       make([]domain.ItemCosting, 0, len(req.Lines)),
	}
	for _, line := range req.Lines {
		productID := strings.TrimSpace(line.ProductID)
		result, err := s.engine.Calculate(productID, line.Quantity, cat.inventory, cat.recipes, cat.ingredients, line.QtyOverrides)
		if err != nil {
			return domain.OrderQuoteResponse{}, s.costingFailure(productID, err)
		}
		if result == nil {
			s.metrics.CostingRun("unknown_product")
			resp.UnknownProductIDs = append(resp.UnknownProductIDs, productID)
			continue
		}
		cost, costOK := domain.AddCents(resp.TotalIngredientCostCents, result.TotalIngredientCostCents)
		revenue, revenueOK := domain.AddCents(resp.RevenueCents, result.RevenueCents)
		if !costOK || !revenueOK {
			return domain.OrderQuoteResponse{}, s.costingFailure(productID, costing.ErrOutOfRange)
		}
		resp.FlaggedLines += s.recordCosting(result)
		resp.TotalIngredientCostCents = cost
		resp.RevenueCents = revenue
		resp.Items = append(resp.Items, *result)
	}

	margin, ok := domain.AddCents(resp.RevenueCents, -resp.TotalIngredientCostCents)
	if !ok {
		return domain.OrderQuoteResponse{}, s.costingFailure(resp.ReferenceID, costing.ErrOutOfRange)
	}
	resp.GrossMarginCents = margin
	if resp.RevenueCents != 0 {
		resp.GrossMarginPercentage = float64(resp.GrossMarginCents) / float64(resp.RevenueCents) * 100
	}
	if len(resp.UnknownProductIDs) > 0 {
		s.log.Info("quote skipped unknown products",
			zap.String("reference_id", resp.ReferenceID),
			zap.Strings("product_ids", resp.UnknownProductIDs),
		)
	}
	return resp, nil
}

// costingFailure maps an out-of-range costing to a rejected request.
func (s *Service) costingFailure(subject string, err error) error {
	if errors.Is(err, costing.ErrOutOfRange) {
		s.metrics.CostingRun("out_of_range")
		s.log.Info("costing out of range", zap.String("subject", subject))
		return fmt.Errorf("%w: %v", store.ErrInvalidRequest, err)
	}
	return err
}

// recordCosting counts the run and its flagged lines, returning the number
// of flagged lines.
func (s *Service) recordCosting(result *domain.ItemCosting) int {
	flagged := 0
	for _, line := range result.Breakdown {
		if line.HasError {
			flagged++
			s.metrics.CostingFlag(line.ErrorDetail)
		}
	}
	if flagged > 0 {
		s.metrics.CostingRun("flagged")
	} else {
		s.metrics.CostingRun("ok")
	}
	return flagged
}
