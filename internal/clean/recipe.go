package clean

import (
	"slices"

	"urbandata/internal/tabular"
)

// Recipe is the rule set for one dataset kind.
type Recipe struct {
	Kind    string
	Columns []tabular.Column
	Schema  tabular.Schema
	// DedupeOn lists projected targets identifying duplicate source rows.
	// Duplicates are dropped before Row runs.
	DedupeOn []string
	// Row maps a projected record to an output row matching Schema, or
	// reports false to reject it.
	Row func(tabular.Record) ([]string, bool)
	// Aggregate derives an optional rollup from the clean table.
	Aggregate func(*tabular.Table) *tabular.Table
}

var recipes = map[string]Recipe{}

func register(r Recipe) {
	if _, dup := recipes[r.Kind]; dup {
		panic("clean: duplicate recipe " + r.Kind)
	}
	recipes[r.Kind] = r
}

func init() {
	register(dvfRecipe())
	register(socialHousingRecipe())
	register(schoolRecipe("colleges"))
	register(schoolRecipe("ecoles_elementaires"))
	register(schoolRecipe("ecoles_maternelles"))
	register(greenSpaceRecipe())
	register(foodWasteRecipe())
}

// Lookup returns the recipe registered for kind.
func Lookup(kind string) (Recipe, bool) {
	r, ok := recipes[kind]
	return r, ok
}

// Kinds lists the registered dataset kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(recipes))
	for kind := range recipes {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}
