package costing

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"catering/backend/internal/domain"
)

const (
	DefaultFallbackUnitCostCents  int64 = 50000
	DefaultHighCostThresholdCents int64 = 10_000_000
)

const (
	ErrorMissingFromInventory = "Missing from Inventory"
	ErrorAbnormallyHighCost   = "Abnormally high cost"
)

// ErrOutOfRange is returned when a portion count or a cent amount of a
// costing does not fit its integer type.
var ErrOutOfRange = errors.New("costing: amount out of range")

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// Engine prices a product's recipe against the current ingredient catalog.
// It holds no state between calls and is safe for concurrent use.
type Engine struct {
	fallbackUnitCostCents  int64
	highCostThresholdCents int64
	portionRules           []PortionRule
	units                  UnitTable
	newLookup              func([]domain.Ingredient) IngredientLookup
}

type Option func(*Engine)

func WithFallbackUnitCost(cents int64) Option {
	return func(e *Engine) {
		if cents > 0 {
			e.fallbackUnitCostCents = cents
		}
	}
}

func WithHighCostThreshold(cents int64) Option {
	return func(e *Engine) {
		if cents > 0 {
			e.highCostThresholdCents = cents
		}
	}
}

func WithPortionRules(rules []PortionRule) Option {
	return func(e *Engine) {
		e.portionRules = rules
	}
}

// WithUnitConversion adds or replaces one recipe-unit to catalog-unit factor.
func WithUnitConversion(recipeUnit string, catalogUnit string, factor float64) Option {
	return func(e *Engine) {
		units := make(UnitTable, len(e.units)+1)
		for k, v := range e.units {
			units[k] = v
		}
		units[unitPair{from: normalizeUnit(recipeUnit), to: normalizeUnit(catalogUnit)}] = decimal.NewFromFloat(factor)
		e.units = units
	}
}

// WithIngredientLookup swaps the catalog join strategy.
func WithIngredientLookup(build func([]domain.Ingredient) IngredientLookup) Option {
	return func(e *Engine) {
		if build != nil {
			e.newLookup = build
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fallbackUnitCostCents:  DefaultFallbackUnitCostCents,
		highCostThresholdCents: DefaultHighCostThresholdCents,
		portionRules:           DefaultPortionRules,
		units:                  DefaultUnits,
		newLookup: func(ingredients []domain.Ingredient) IngredientLookup {
			return NewNameIndex(ingredients)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// CalculateItemCosting prices quantity guests of productID with the default
// engine. It returns nil and no error when the product is unknown and not a
// custom item.
func CalculateItemCosting(
	productID string,
	quantity int,
	inventory []domain.InventoryItem,
	recipes []domain.Recipe,
	ingredients []domain.Ingredient,
	qtyOverrides map[string]float64,
) (*domain.ItemCosting, error) {
	return defaultEngine.Calculate(productID, quantity, inventory, recipes, ingredients, qtyOverrides)
}

// IsCustomItemID reports whether id names an ad hoc, non-catalog item.
func IsCustomItemID(id string) bool {
	lower := strings.ToLower(strings.TrimSpace(id))
	return strings.HasPrefix(lower, "custom-") || strings.HasPrefix(lower, "custom_")
}

func (e *Engine) Calculate(
	productID string,
	quantity int,
	inventory []domain.InventoryItem,
	recipes []domain.Recipe,
	ingredients []domain.Ingredient,
	qtyOverrides map[string]float64,
) (*domain.ItemCosting, error) {
	product, ok := findProduct(inventory, productID)
	if !ok {
		if IsCustomItemID(productID) {
			return &domain.ItemCosting{
				InventoryItemID:  productID,
				Quantity:         quantity,
				RequiredPortions: quantity,
				PortionStrategy:  StrategyStandard,
				Breakdown:        []domain.CostLine{},
			}, nil
		}
		return nil, nil
	}

	multiplier, strategy := ResolvePortions(e.portionRules, product.Name)
	if quantity > math.MaxInt/multiplier {
		return nil, ErrOutOfRange
	}
	requiredPortions := quantity * multiplier

	revenue := decimal.NewFromInt(product.UnitPriceCents).Mul(decimal.NewFromInt(int64(quantity)))
	revenueCents, err := toCents(revenue)
	if err != nil {
		return nil, err
	}

	costing := &domain.ItemCosting{
		InventoryItemID:  product.ID,
		Name:             product.Name,
		Quantity:         quantity,
		RequiredPortions: requiredPortions,
		PortionStrategy:  strategy,
		RevenueCents:     revenueCents,
		Breakdown:        []domain.CostLine{},
	}

	if recipe, ok := findRecipe(recipes, product.RecipeID); ok {
		lookup := e.newLookup(ingredients)
		overrides := normalizeOverrides(qtyOverrides)
		for _, ri := range recipe.Ingredients {
			line, err := e.costLine(ri, quantity, requiredPortions, strategy, lookup, overrides)
			if err != nil {
				return nil, err
			}
			total, ok := domain.AddCents(costing.TotalIngredientCostCents, line.TotalCostCents)
			if !ok {
				return nil, ErrOutOfRange
			}
			costing.TotalIngredientCostCents = total
			costing.Breakdown = append(costing.Breakdown, line)
		}
	}

	margin, err := toCents(revenue.Sub(decimal.NewFromInt(costing.TotalIngredientCostCents)))
	if err != nil {
		return nil, err
	}
	costing.GrossMarginCents = margin
	if costing.RevenueCents != 0 {
		costing.GrossMarginPercentage = float64(costing.GrossMarginCents) / float64(costing.RevenueCents) * 100
	}
	return costing, nil
}

// toCents rounds d to whole cents and refuses values outside int64.
func toCents(d decimal.Decimal) (int64, error) {
	d = d.Round(0)
	if d.LessThan(minCents) || d.GreaterThan(maxCents) {
		return 0, ErrOutOfRange
	}
	return d.IntPart(), nil
}

func (e *Engine) costLine(
	ri domain.RecipeIngredient,
	quantity int,
	requiredPortions int,
	strategy string,
	lookup IngredientLookup,
	overrides map[string]float64,
) (domain.CostLine, error) {
	line := domain.CostLine{
		Name:            ri.Name,
		QtyPerPortion:   ri.QtyPerPortion,
		Unit:            ri.Unit,
		PortionStrategy: strategy,
		SubRecipeGroup:  ri.SubRecipeGroup,
	}

	var required decimal.Decimal
	if override, ok := lookupOverride(overrides, ri.Name); ok {
		required = decimal.NewFromFloat(override).Mul(decimal.NewFromInt(int64(quantity)))
	} else if threshold, base, ok := selectTier(ri.ScalingTiers, requiredPortions); ok {
		tier := threshold
		line.ScalingTierApplied = &tier
		required = decimal.NewFromFloat(base).
			Div(decimal.NewFromInt(int64(threshold))).
			Mul(decimal.NewFromInt(int64(requiredPortions)))
	} else {
		required = decimal.NewFromFloat(ri.QtyPerPortion).Mul(decimal.NewFromInt(int64(requiredPortions)))
	}

	ing, found := lookup.Lookup(ri.Name)
	if found {
		required = required.Mul(e.units.Factor(ri.Unit, ing.Unit))
		line.Unit = ing.Unit
		line.UnitCostCents = unitCost(ing, e.fallbackUnitCostCents)
	} else {
		line.UnitCostCents = e.fallbackUnitCostCents
		line.HasError = true
		line.ErrorDetail = ErrorMissingFromInventory
	}

	line.RequiredQty = required.InexactFloat64()
	total, err := toCents(required.Mul(decimal.NewFromInt(line.UnitCostCents)))
	if err != nil {
		return domain.CostLine{}, err
	}
	line.TotalCostCents = total
	if line.TotalCostCents > e.highCostThresholdCents {
		line.HasError = true
		line.ErrorDetail = ErrorAbnormallyHighCost
	}
	return line, nil
}

// selectTier picks the smallest threshold that covers portions, or the
// largest threshold when none does.
func selectTier(tiers map[int]float64, portions int) (int, float64, bool) {
	if len(tiers) == 0 {
		return 0, 0, false
	}
	thresholds := make([]int, 0, len(tiers))
	for threshold := range tiers {
		if threshold > 0 {
			thresholds = append(thresholds, threshold)
		}
	}
	if len(thresholds) == 0 {
		return 0, 0, false
	}
	sort.Ints(thresholds)
	for _, threshold := range thresholds {
		if threshold >= portions {
			return threshold, tiers[threshold], true
		}
	}
	largest := thresholds[len(thresholds)-1]
	return largest, tiers[largest], true
}

func unitCost(ing domain.Ingredient, fallback int64) int64 {
	if ing.MarketPriceCents != nil && *ing.MarketPriceCents > 0 {
		return *ing.MarketPriceCents
	}
	if ing.CurrentCostCents > 0 {
		return ing.CurrentCostCents
	}
	return fallback
}

func normalizeOverrides(overrides map[string]float64) map[string]float64 {
	if len(overrides) == 0 {
		return nil
	}
	normalized := make(map[string]float64, len(overrides))
	for name, qty := range overrides {
		normalized[NormalizeName(name)] = qty
	}
	return normalized
}

func lookupOverride(overrides map[string]float64, name string) (float64, bool) {
	if overrides == nil {
		return 0, false
	}
	qty, ok := overrides[NormalizeName(name)]
	return qty, ok
}

func findProduct(inventory []domain.InventoryItem, id string) (domain.InventoryItem, bool) {
	for _, item := range inventory {
		if item.ID == id {
			return item, true
		}
	}
	return domain.InventoryItem{}, false
}

func findRecipe(recipes []domain.Recipe, id string) (domain.Recipe, bool) {
	if id == "" {
		return domain.Recipe{}, false
	}
	for _, recipe := range recipes {
		if recipe.ID == id {
			return recipe, true
		}
	}
	return domain.Recipe{}, false
}
