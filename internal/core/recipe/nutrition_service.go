package recipe

import (
	"context"
	"math"
	"strings"

	"chefmind/internal/core/catalog"
	"chefmind/internal/pkg/common"

	"go.uber.org/zap"
)

// NutritionAnalyzer performs a full nutrition analysis over ingredient lines.
// Satisfied by the paid-catalog client.
type NutritionAnalyzer interface {
	AnalyzeNutrition(ctx context.Context, title string, ingredientLines []string) (*catalog.NutritionTotals, error)
}

// NutritionService turns ingredient lines into a formatted nutrition report.
// It never fails: when the analyzer is unavailable or errors, it answers with
// a deterministic estimate derived from the ingredient count.
type NutritionService struct {
	analyzer NutritionAnalyzer
}

// NewNutritionService creates a nutrition service.
func NewNutritionService(analyzer NutritionAnalyzer) *NutritionService {
	return &NutritionService{analyzer: analyzer}
}

// Analyze returns the nutrition report for the given recipe title and
// ingredient lines.
func (s *NutritionService) Analyze(ctx context.Context, title string, ingredientLines []string) *Nutrition {
	if title == "" {
		title = "Custom Recipe"
	}

	if s.analyzer != nil {
		totals, err := s.analyzer.AnalyzeNutrition(ctx, title, ingredientLines)
		if err == nil {
			return formatTotals(totals)
		}
		common.LogWarn("nutrition analysis unavailable, using estimates",
			zap.String("title", title),
			zap.Error(err),
		)
	}

	return estimateNutrition(ingredientLines)
}

func round(f float64) int {
	return int(math.Round(f))
}

func macroFrom(totals *catalog.NutritionTotals, key string) Macro {
	m := Macro{Unit: "g"}
	if n, ok := totals.TotalNutrients[key]; ok {
		m.Amount = round(n.Quantity)
		if n.Unit != "" {
			m.Unit = n.Unit
		}
	}
	if d, ok := totals.TotalDaily[key]; ok {
		m.Daily = round(d.Quantity)
	}
	return m
}

func dailyFrom(totals *catalog.NutritionTotals, key string) int {
	if d, ok := totals.TotalDaily[key]; ok {
		return round(d.Quantity)
	}
	return 0
}

func formatTotals(totals *catalog.NutritionTotals) *Nutrition {
	n := &Nutrition{
		Calories: round(totals.Calories),
		Macros: Macros{
			Protein: macroFrom(totals, "PROCNT"),
			Carbs:   macroFrom(totals, "CHOCDF"),
			Fat:     macroFrom(totals, "FAT"),
			Fiber:   macroFrom(totals, "FIBTG"),
		},
		Vitamins: Vitamins{
			VitaminA: dailyFrom(totals, "VITA_RAE"),
			VitaminC: dailyFrom(totals, "VITC"),
			VitaminD: dailyFrom(totals, "VITD"),
			Calcium:  dailyFrom(totals, "CA"),
			Iron:     dailyFrom(totals, "FE"),
		},
		DietLabels:   totals.DietLabels,
		HealthLabels: totals.HealthLabels,
		Source:       "edamam",
	}
	if n.DietLabels == nil {
		n.DietLabels = []string{}
	}
	if n.HealthLabels == nil {
		n.HealthLabels = []string{}
	}
	n.HealthScore = analyzedHealthScore(totals)
	return n
}

// analyzedHealthScore starts at 50 and moves with daily-value thresholds and
// health labels, clamped to [0, 100].
func analyzedHealthScore(totals *catalog.NutritionTotals) int {
	score := 50

	daily := func(key string) float64 {
		if d, ok := totals.TotalDaily[key]; ok {
			return d.Quantity
		}
		return 0
	}

	if daily("FIBTG") > 20 {
		score += 15
	}
	if daily("PROCNT") > 30 {
		score += 10
	}
	if daily("VITA_RAE") > 50 {
		score += 10
	}
	if daily("VITC") > 50 {
		score += 10
	}

	if daily("FAT") > 100 {
		score -= 15
	}
	if daily("CHOLE") > 100 {
		score -= 10
	}
	if daily("NA") > 100 {
		score -= 15
	}

	for _, label := range totals.HealthLabels {
		switch label {
		case "Low-Sugar", "Low-Sodium", "High-Fiber":
			score += 10
		}
	}

	return clamp(score, 0, 100)
}

// estimateNutrition derives figures from the ingredient count alone. The
// per-ingredient factors and caps approximate a typical 8 to 15 ingredient
// recipe in the 300 to 600 calorie range.
func estimateNutrition(ingredientLines []string) *Nutrition {
	count := len(ingredientLines)

	calories, protein, carbs, fat := 400.0, 20.0, 40.0, 15.0
	if count > 0 {
		calories = math.Min(float64(count)*45, 600)
		protein = math.Min(float64(count)*3, 35)
		carbs = math.Min(float64(count)*8, 60)
		fat = math.Min(float64(count)*2, 25)
	}
	fiber := float64(count) * 1.5

	return &Nutrition{
		Calories: round(calories),
		Macros: Macros{
			Protein: Macro{Amount: round(protein), Unit: "g", Daily: round(protein / 50 * 100)},
			Carbs:   Macro{Amount: round(carbs), Unit: "g", Daily: round(carbs / 300 * 100)},
			Fat:     Macro{Amount: round(fat), Unit: "g", Daily: round(fat / 78 * 100)},
			Fiber:   Macro{Amount: round(fiber), Unit: "g", Daily: round(fiber / 28 * 100)},
		},
		Vitamins: Vitamins{
			VitaminA: 15,
			VitaminC: 20,
			VitaminD: 5,
			Calcium:  10,
			Iron:     12,
		},
		DietLabels:   []string{},
		HealthLabels: []string{},
		HealthScore:  estimatedHealthScore(ingredientLines, calories, protein, fat),
		Source:       "estimate",
	}
}

// estimatedHealthScore scans the ingredient text for keyword bonuses and
// penalties, clamped to [30, 95].
func estimatedHealthScore(ingredientLines []string, calories, protein, fat float64) int {
	score := 50
	text := strings.ToLower(strings.Join(ingredientLines, " "))

	has := func(terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(text, t) {
				return true
			}
		}
		return false
	}

	if has("vegetable", "broccoli", "spinach", "kale") {
		score += 15
	}
	if has("chicken", "fish", "salmon", "tuna") {
		score += 10
	}
	if has("olive oil", "avocado") {
		score += 10
	}
	if has("garlic", "ginger", "turmeric") {
		score += 5
	}
	if has("lemon", "lime") {
		score += 5
	}

	if has("sugar", "syrup") {
		score -= 10
	}
	if strings.Contains(text, "butter") && strings.Contains(text, "cream") {
		score -= 10
	}
	if has("fried", "deep fry") {
		score -= 15
	}
	if has("bacon", "sausage") {
		score -= 5
	}

	if protein > 25 {
		score += 10
	}
	if fat > 30 {
		score -= 5
	}
	if calories < 400 {
		score += 5
	}
	if calories > 700 {
		score -= 10
	}
	if len(ingredientLines) > 10 {
		score += 5
	}

	return clamp(score, 30, 95)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
