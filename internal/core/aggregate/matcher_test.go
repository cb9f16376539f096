package aggregate

import (
	"testing"

	"chefmind/internal/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeWithIngredients(id string, names ...string) catalog.Recipe {
	ingredients := make([]catalog.IngredientRef, 0, len(names))
	for _, n := range names {
		ingredients = append(ingredients, catalog.IngredientRef{Name: n})
	}
	return catalog.Recipe{ID: id, Name: id, Ingredients: ingredients}
}

func TestScore_CountsContainedIngredients(t *testing.T) {
	r := recipeWithIngredients("omelette", "Eggs", "Milk", "Salt", "Pepper")

	scored := Score(r, []string{"eggs", "milk", "flour"})

	assert.Equal(t, 2, scored.MatchCount)
	assert.Equal(t, []string{"eggs", "milk"}, scored.MatchedIngredients)
	assert.Equal(t, 3, scored.TotalRequested)
}

func TestScore_PreservesRequestCasing(t *testing.T) {
	r := recipeWithIngredients("curry", "Chicken Breast")

	scored := Score(r, []string{"Chicken"})

	require.Equal(t, 1, scored.MatchCount)
	assert.Equal(t, "Chicken", scored.MatchedIngredients[0])
}

func TestScore_SubstringLooseness(t *testing.T) {
	// Containment is deliberate: "pea" matches "peanut butter".
	r := recipeWithIngredients("satay", "Peanut Butter")

	scored := Score(r, []string{"pea"})

	assert.Equal(t, 1, scored.MatchCount)
}

func TestScore_NoRequestedIngredients(t *testing.T) {
	r := recipeWithIngredients("plain", "Rice")

	scored := Score(r, nil)

	assert.Equal(t, 0, scored.MatchCount)
	assert.Empty(t, scored.MatchedIngredients)
	assert.Equal(t, 0, scored.TotalRequested)
}

func TestSortByMatch_DescendingAndStable(t *testing.T) {
	scored := []ScoredRecipe{
		{Recipe: catalog.Recipe{ID: "a"}, MatchCount: 1},
		{Recipe: catalog.Recipe{ID: "b"}, MatchCount: 3},
		{Recipe: catalog.Recipe{ID: "c"}, MatchCount: 1},
		{Recipe: catalog.Recipe{ID: "d"}, MatchCount: 2},
	}

	SortByMatch(scored)

	require.Len(t, scored, 4)
	assert.Equal(t, "b", scored[0].ID)
	assert.Equal(t, "d", scored[1].ID)
	// Ties keep their prior relative order.
	assert.Equal(t, "a", scored[2].ID)
	assert.Equal(t, "c", scored[3].ID)
}
