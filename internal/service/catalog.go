package service

import (
	"context"
	"fmt"
	"strings"

	"catering/backend/internal/domain"
	"catering/backend/internal/store"
	"catering/backend/internal/syncstore"
)

func (s *Service) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.ListInventoryItems(ctx)
}

func (s *Service) UpsertInventoryItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return domain.InventoryItem{}, err
	}
	item.ID = strings.TrimSpace(item.ID)
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	item.RecipeID = strings.TrimSpace(item.RecipeID)
	if item.Name == "" || item.UnitPriceCents < 0 {
		return domain.InventoryItem{}, store.ErrInvalidRequest
	}

	saved, err := s.repo.UpsertInventoryItem(ctx, item)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.logAudit(ctx, "inventory_item_upsert", "inventory_item", saved.ID, fmt.Sprintf("name=%s,price=%d", saved.Name, saved.UnitPriceCents))
	s.publish(syncstore.CollectionInventoryItems, saved.ID, saved)
	return *saved, nil
}

func (s *Service) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return s.repo.ListRecipes(ctx)
}

func (s *Service) UpsertRecipe(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return domain.Recipe{}, err
	}
	recipe.ID = strings.TrimSpace(recipe.ID)
	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" {
		return domain.Recipe{}, store.ErrInvalidRequest
	}
	for i := range recipe.Ingredients {
		ri := &recipe.Ingredients[i]
		ri.Name = strings.TrimSpace(ri.Name)
		ri.Unit = strings.TrimSpace(ri.Unit)
		if ri.Name == "" || ri.QtyPerPortion < 0 {
			return domain.Recipe{}, store.ErrInvalidRequest
		}
		for threshold, base := range ri.ScalingTiers {
			if threshold < 1 || base < 0 {
				return domain.Recipe{}, store.ErrInvalidRequest
			}
		}
	}

	saved, err := s.repo.UpsertRecipe(ctx, recipe)
	if err != nil {
		return domain.Recipe{}, err
	}
	s.logAudit(ctx, "recipe_upsert", "recipe", saved.ID, fmt.Sprintf("name=%s,ingredients=%d", saved.Name, len(saved.Ingredients)))
	s.publish(syncstore.CollectionRecipes, saved.ID, saved)
	return *saved, nil
}

func (s *Service) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	return s.repo.ListIngredients(ctx)
}

func (s *Service) UpsertIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return domain.Ingredient{}, err
	}
	ingredient.ID = strings.TrimSpace(ingredient.ID)
	ingredient.Name = strings.TrimSpace(ingredient.Name)
	ingredient.Unit = strings.TrimSpace(ingredient.Unit)
	if ingredient.Name == "" || ingredient.CurrentCostCents < 0 || ingredient.StockLevel < 0 {
		return domain.Ingredient{}, store.ErrInvalidRequest
	}
	if ingredient.MarketPriceCents != nil && *ingredient.MarketPriceCents < 0 {
		return domain.Ingredient{}, store.ErrInvalidRequest
	}

	saved, err := s.repo.UpsertIngredient(ctx, ingredient)
	if err != nil {
		return domain.Ingredient{}, err
	}
	s.logAudit(ctx, "ingredient_upsert", "ingredient", saved.ID, fmt.Sprintf("name=%s,cost=%d", saved.Name, saved.CurrentCostCents))
	s.publish(syncstore.CollectionIngredients, saved.ID, saved)
	return *saved, nil
}
