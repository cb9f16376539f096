package catalog

import (
	"strings"
	"unicode"
)

// Source names carried in Recipe.SourceName for provenance.
const (
	SourceMealDB = "TheMealDB"
	SourceEdamam = "Edamam"
)

// IngredientRef is one ingredient entry of a recipe. The free catalog splits
// name and measure; the paid catalog delivers whole lines, which land in Name
// with an empty Measure.
type IngredientRef struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Recipe is the normalized record shared by every pipeline stage. Source-specific
// field names never leak past the normalizers in this package.
type Recipe struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Area         string          `json:"area"`
	ImageURL     string          `json:"image"`
	Instructions string          `json:"instructions"`
	Ingredients  []IngredientRef `json:"ingredients"`
	VideoURL     string          `json:"video"`
	Tags         []string        `json:"tags"`
	SourceName   string          `json:"source"`
	SourceURL    string          `json:"sourceUrl,omitempty"`
}

// IngredientLines returns the ordered "quantity + name" lines of the recipe.
// The result is derived, never mutated in place.
func (r *Recipe) IngredientLines() []string {
	lines := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		line := strings.TrimSpace(strings.TrimSpace(ing.Measure) + " " + strings.TrimSpace(ing.Name))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// IngredientBlob returns the lowercased concatenation of the ingredient lines,
// the matching surface for scoring and dietary classification.
func (r *Recipe) IngredientBlob() string {
	return strings.ToLower(strings.Join(r.IngredientLines(), " "))
}

// NormalizeArea capitalizes the first letter and lowercases the rest, so region
// filtering can use exact matches regardless of source casing.
func NormalizeArea(area string) string {
	area = strings.TrimSpace(area)
	if area == "" {
		return ""
	}
	runes := []rune(strings.ToLower(area))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// SplitTags splits a comma-separated tag string, dropping empty entries.
func SplitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
