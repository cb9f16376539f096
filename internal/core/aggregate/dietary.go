package aggregate

import (
	"strings"

	"chefmind/internal/core/catalog"
)

// Dietary is a heuristic dietary tag, evaluated over keyword rules rather than
// authoritative nutritional analysis.
type Dietary string

const (
	DietaryNone       Dietary = "none"
	DietaryVegetarian Dietary = "vegetarian"
	DietaryVegan      Dietary = "vegan"
	DietaryKeto       Dietary = "keto"
	DietaryPaleo      Dietary = "paleo"
	DietarySeafood    Dietary = "seafood"
)

// categoryForDietary maps the dietary tags that have a free-catalog category of
// their own. Keto and paleo have none and rely on filtering.
var categoryForDietary = map[Dietary]string{
	DietaryVegetarian: "Vegetarian",
	DietaryVegan:      "Vegan",
	DietarySeafood:    "Seafood",
}

// CategoryForDietary returns the free-catalog category for a dietary tag, or ""
// when there is none.
func CategoryForDietary(d Dietary) string {
	return categoryForDietary[d]
}

// IsSet reports whether the tag restricts anything.
func (d Dietary) IsSet() bool {
	return d != "" && d != DietaryNone
}

var (
	meatTerms      = []string{"chicken", "beef", "pork", "lamb", "meat"}
	dairyEggTerms  = []string{"cheese", "milk", "egg", "butter"}
	carbTerms      = []string{"pasta", "rice", "bread", "potato"}
	grainTerms     = []string{"pasta", "rice", "bread"}
	fishTerms      = []string{"fish", "salmon", "tuna", "cod", "haddock", "mackerel", "trout", "halibut", "tilapia", "sardine", "anchov", "herring", "bass", "snapper"}
	shellfishTerms = []string{"shrimp", "prawn", "crab", "lobster", "clam", "mussel", "oyster", "scallop", "squid", "octopus", "crawfish", "crayfish"}
	seafoodNames   = []string{"fish", "seafood", "salmon", "tuna", "prawn", "shrimp", "crab", "lobster"}
)

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// MatchesDietary evaluates the recipe against a dietary tag using substring
// heuristics over its lowercased category, name and ingredient text. The rules
// are approximate on purpose; a dish whose name says "vegetable" but whose
// category is empty can still pass the seafood check.
func MatchesDietary(recipe catalog.Recipe, tag Dietary) bool {
	if !tag.IsSet() {
		return true
	}

	category := strings.ToLower(recipe.Category)
	name := strings.ToLower(recipe.Name)
	ingredients := recipe.IngredientBlob()

	switch tag {
	case DietaryVegetarian:
		return strings.Contains(category, "vegetarian") ||
			(!containsAny(ingredients, meatTerms) &&
				!strings.Contains(name, "chicken") &&
				!strings.Contains(name, "beef"))

	case DietaryVegan:
		return strings.Contains(category, "vegan") ||
			(!strings.Contains(ingredients, "chicken") &&
				!strings.Contains(ingredients, "beef") &&
				!strings.Contains(ingredients, "pork") &&
				!strings.Contains(ingredients, "fish") &&
				!containsAny(ingredients, dairyEggTerms))

	case DietaryKeto:
		hasProtein := strings.Contains(ingredients, "chicken") ||
			strings.Contains(ingredients, "beef") ||
			strings.Contains(ingredients, "fish") ||
			strings.Contains(ingredients, "egg") ||
			strings.Contains(category, "beef") ||
			strings.Contains(category, "chicken") ||
			strings.Contains(category, "seafood")
		hasCarbs := containsAny(ingredients, carbTerms) ||
			strings.Contains(name, "pasta") ||
			strings.Contains(name, "rice")
		return hasProtein && !hasCarbs

	case DietaryPaleo:
		hasProtein := strings.Contains(ingredients, "chicken") ||
			strings.Contains(ingredients, "beef") ||
			strings.Contains(ingredients, "fish") ||
			strings.Contains(category, "chicken") ||
			strings.Contains(category, "beef") ||
			strings.Contains(category, "seafood")
		return hasProtein && !containsAny(ingredients, grainTerms)

	case DietarySeafood:
		hasSeafoodCategory := strings.Contains(category, "seafood") || strings.Contains(category, "fish")
		isActualSeafood := hasSeafoodCategory ||
			containsAny(ingredients, fishTerms) ||
			containsAny(ingredients, shellfishTerms) ||
			containsAny(name, seafoodNames)

		// A vegetarian or vegan category wins over any "fish sauce" mention
		// in the ingredients.
		isVegetarian := strings.Contains(category, "vegetarian") || strings.Contains(category, "vegan")

		return isActualSeafood && !isVegetarian

	default:
		return true
	}
}

// FilterDietary keeps the recipes matching the tag.
func FilterDietary(recipes []catalog.Recipe, tag Dietary) []catalog.Recipe {
	if !tag.IsSet() {
		return recipes
	}
	kept := make([]catalog.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if MatchesDietary(recipe, tag) {
			kept = append(kept, recipe)
		}
	}
	return kept
}
