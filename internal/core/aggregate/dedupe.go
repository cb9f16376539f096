package aggregate

import (
	"chefmind/internal/core/catalog"
)

// Merge flattens the given recipe lists into one sequence unique by id. When an
// id appears more than once, the later occurrence's field values win, but the
// entry keeps the position of the first occurrence. The rule is independent of
// which source produced the duplicate.
func Merge(lists ...[]catalog.Recipe) []catalog.Recipe {
	byID := make(map[string]catalog.Recipe)
	order := make([]string, 0)

	for _, list := range lists {
		for _, recipe := range list {
			if recipe.ID == "" {
				continue
			}
			if _, seen := byID[recipe.ID]; !seen {
				order = append(order, recipe.ID)
			}
			byID[recipe.ID] = recipe
		}
	}

	merged := make([]catalog.Recipe, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}
