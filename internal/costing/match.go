package costing

import (
	"strings"
	"unicode"

	"catering/backend/internal/domain"
)

// IngredientLookup resolves a recipe ingredient name to a catalog entry.
type IngredientLookup interface {
	Lookup(name string) (domain.Ingredient, bool)
}

// NameIndex joins recipe ingredients to the catalog by normalized name.
// When two catalog entries normalize to the same key the first one wins.
type NameIndex struct {
	byName map[string]domain.Ingredient
}

func NewNameIndex(ingredients []domain.Ingredient) *NameIndex {
	idx := &NameIndex{byName: make(map[string]domain.Ingredient, len(ingredients))}
	for _, ing := range ingredients {
		key := NormalizeName(ing.Name)
		if key == "" {
			continue
		}
		if _, exists := idx.byName[key]; exists {
			continue
		}
		idx.byName[key] = ing
	}
	return idx
}

func (i *NameIndex) Lookup(name string) (domain.Ingredient, bool) {
	ing, ok := i.byName[NormalizeName(name)]
	return ing, ok
}

// NormalizeName lowercases, trims and drops every non-alphanumeric rune, so
// "Palm Oil (refined)" and "palmoilrefined" are the same key.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
