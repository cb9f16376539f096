package recipe

import (
	"chefmind/internal/core/catalog"
)

// DetailedRecipe is a full recipe record extended with timing and serving
// estimates for the detail endpoint.
type DetailedRecipe struct {
	catalog.Recipe
	PrepTime int `json:"prepTime"`
	CookTime int `json:"cookTime"`
	Servings int `json:"servings"`
}

// Macro is one macronutrient entry: absolute amount plus percent of the daily
// reference intake.
type Macro struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
	Daily  int    `json:"daily"`
}

// Macros groups the macronutrients reported by the nutrition endpoint.
type Macros struct {
	Protein Macro `json:"protein"`
	Carbs   Macro `json:"carbs"`
	Fat     Macro `json:"fat"`
	Fiber   Macro `json:"fiber"`
}

// Vitamins holds percent-of-daily values for the tracked micronutrients.
type Vitamins struct {
	VitaminA int `json:"vitaminA"`
	VitaminC int `json:"vitaminC"`
	VitaminD int `json:"vitaminD"`
	Calcium  int `json:"calcium"`
	Iron     int `json:"iron"`
}

// Nutrition is the formatted nutrition analysis returned to clients.
type Nutrition struct {
	Calories     int      `json:"calories"`
	Macros       Macros   `json:"macros"`
	Vitamins     Vitamins `json:"vitamins"`
	DietLabels   []string `json:"dietLabels"`
	HealthLabels []string `json:"healthLabels"`
	HealthScore  int      `json:"healthScore"`
	Source       string   `json:"source"`
}

// Meal is one slot of a meal-plan day.
type Meal struct {
	Name        string   `json:"name"`
	Calories    int      `json:"calories"`
	Ingredients []string `json:"ingredients"`
}

// DayMeals holds the four meal slots of one day.
type DayMeals struct {
	Breakfast Meal `json:"breakfast"`
	Lunch     Meal `json:"lunch"`
	Dinner    Meal `json:"dinner"`
	Snack     Meal `json:"snack"`
}

// PlanDay is one day of a generated meal plan.
type PlanDay struct {
	Day           string   `json:"day"`
	Meals         DayMeals `json:"meals"`
	TotalCalories int      `json:"totalCalories"`
}

// NutritionSummary aggregates plan-level nutrition figures.
type NutritionSummary struct {
	AvgCaloriesPerDay int `json:"avgCaloriesPerDay"`
	BalanceScore      int `json:"balanceScore"`
}

// MealPlan is the complete generated plan.
type MealPlan struct {
	MealPlan         []PlanDay        `json:"mealPlan"`
	ShoppingList     []string         `json:"shoppingList"`
	EstimatedCost    int              `json:"estimatedCost"`
	NutritionSummary NutritionSummary `json:"nutritionSummary"`
}
