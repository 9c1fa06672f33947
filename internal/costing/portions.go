package costing

import "strings"

const (
	StrategyJollofDoubleScoop = "jollof_double_scoop"
	StrategyOptionABalanced   = "option_a_balanced"
	StrategyProteinDouble     = "protein_double"
	StrategyFishSingle        = "fish_single"
	StrategyStandard          = "standard"
)

// PortionRule converts a guest count into recipe portions for products whose
// name matches. A rule matches when the lowercased name contains any of
// Contains and none of Excludes.
type PortionRule struct {
	Strategy   string
	Contains   []string
	Excludes   []string
	Multiplier int
}

// DefaultPortionRules are evaluated in order; the first match wins.
var DefaultPortionRules = []PortionRule{
	{Strategy: StrategyJollofDoubleScoop, Contains: []string{"jollof"}, Excludes: []string{"menu"}, Multiplier: 2},
	{Strategy: StrategyOptionABalanced, Contains: []string{"option a"}, Multiplier: 1},
	{Strategy: StrategyProteinDouble, Contains: []string{"stew", "chicken", "beef"}, Multiplier: 2},
	{Strategy: StrategyFishSingle, Contains: []string{"fish"}, Multiplier: 1},
}

func (r PortionRule) matches(lowerName string) bool {
	for _, ex := range r.Excludes {
		if strings.Contains(lowerName, ex) {
			return false
		}
	}
	for _, in := range r.Contains {
		if strings.Contains(lowerName, in) {
			return true
		}
	}
	return false
}

// ResolvePortions returns the multiplier and strategy name for a product.
func ResolvePortions(rules []PortionRule, productName string) (int, string) {
	lower := strings.ToLower(productName)
	for _, rule := range rules {
		if rule.Multiplier < 1 {
			continue
		}
		if rule.matches(lower) {
			return rule.Multiplier, rule.Strategy
		}
	}
	return 1, StrategyStandard
}
