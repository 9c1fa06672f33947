package costing

import (
	"strings"

	"github.com/shopspring/decimal"
)

type unitPair struct {
	from string
	to   string
}

// UnitTable maps a recipe unit to a catalog unit. Pairs not listed are
// treated as already compatible.
type UnitTable map[unitPair]decimal.Decimal

var DefaultUnits = UnitTable{
	{from: "g", to: "kg"}: decimal.New(1, -3),
	{from: "ml", to: "l"}: decimal.New(1, -3),
	{from: "cl", to: "l"}: decimal.New(1, -2),
	{from: "kg", to: "g"}: decimal.New(1000, 0),
}

// Factor returns what a quantity in recipeUnit must be multiplied by to be
// expressed in catalogUnit.
func (t UnitTable) Factor(recipeUnit string, catalogUnit string) decimal.Decimal {
	from := normalizeUnit(recipeUnit)
	to := normalizeUnit(catalogUnit)
	if from == to || from == "" || to == "" {
		return decimal.NewFromInt(1)
	}
	if factor, ok := t[unitPair{from: from, to: to}]; ok {
		return factor
	}
	return decimal.NewFromInt(1)
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
