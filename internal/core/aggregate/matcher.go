package aggregate

import (
	"sort"
	"strings"

	"chefmind/internal/core/catalog"
)

// ScoredRecipe is a recipe annotated with how well it matches the ingredients
// the user asked for. It exists only between ranking and response encoding.
type ScoredRecipe struct {
	catalog.Recipe
	MatchCount         int      `json:"ingredientMatchCount"`
	MatchedIngredients []string `json:"matchedUserIngredients"`
	TotalRequested     int      `json:"totalUserIngredients"`
}

// Score counts how many of the requested ingredients appear in the recipe's
// ingredient text. The predicate is plain substring containment against the
// lowercased blob, so "pea" matches "peanut"; that looseness is part of the
// contract. MatchedIngredients keeps the request's order and casing.
func Score(recipe catalog.Recipe, requested []string) ScoredRecipe {
	scored := ScoredRecipe{
		Recipe:             recipe,
		MatchedIngredients: []string{},
		TotalRequested:     len(requested),
	}
	if len(requested) == 0 {
		return scored
	}

	blob := recipe.IngredientBlob()
	for _, ingredient := range requested {
		if strings.Contains(blob, strings.ToLower(ingredient)) {
			scored.MatchCount++
			scored.MatchedIngredients = append(scored.MatchedIngredients, ingredient)
		}
	}
	return scored
}

// ScoreAll scores every recipe against the requested ingredients.
func ScoreAll(recipes []catalog.Recipe, requested []string) []ScoredRecipe {
	scored := make([]ScoredRecipe, 0, len(recipes))
	for _, recipe := range recipes {
		scored = append(scored, Score(recipe, requested))
	}
	return scored
}

// SortByMatch orders recipes by descending match count. The sort is stable:
// ties keep their prior relative order.
func SortByMatch(recipes []ScoredRecipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].MatchCount > recipes[j].MatchCount
	})
}
