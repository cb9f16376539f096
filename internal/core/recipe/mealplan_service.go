package recipe

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"chefmind/internal/pkg/common"

	"go.uber.org/zap"
)

// PlanRequest describes one meal-plan generation call.
type PlanRequest struct {
	Days    int
	Dietary string
	Budget  string
}

// PlanCompleter produces meal-plan text. Satisfied by the groq client.
type PlanCompleter interface {
	Complete(ctx context.Context, model, system, prompt string, maxTokens int, temperature float64) (string, error)
	Enabled() bool
	PlanModel() string
}

// MealPlanService generates a structured multi-day meal plan from free-form
// model output. The parser is deliberately tolerant; whatever the model fails
// to deliver is filled from a built-in rotation so the plan always comes back
// complete.
type MealPlanService struct {
	ai PlanCompleter
}

// NewMealPlanService creates a meal-plan service.
func NewMealPlanService(ai PlanCompleter) *MealPlanService {
	return &MealPlanService{ai: ai}
}

const planSystemPrompt = "You are a helpful nutritionist and meal planning expert. Create detailed, practical meal plans with specific foods, calorie counts, and ingredients."

var daysOfWeek = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Generate produces a plan for the requested number of days. It errors only
// when the model is unconfigured or unreachable.
func (s *MealPlanService) Generate(ctx context.Context, req PlanRequest) (*MealPlan, error) {
	if req.Days <= 0 || req.Days > len(daysOfWeek) {
		req.Days = 7
	}
	dietary := req.Dietary
	if dietary == "" {
		dietary = "balanced"
	}
	budget := req.Budget
	if budget == "" {
		budget = "moderate"
	}

	if s.ai == nil || !s.ai.Enabled() {
		return nil, common.ErrSourceDisabled
	}

	prompt := buildPlanPrompt(req.Days, dietary, budget)
	text, err := s.ai.Complete(ctx, s.ai.PlanModel(), planSystemPrompt, prompt, 1500, 0.8)
	if err != nil {
		common.LogError("meal plan generation failed", zap.Error(err))
		return nil, err
	}

	plan := parsePlanText(text, req.Days, dietary, req.Budget)

	common.LogInfo("meal plan generated",
		zap.Int("days", len(plan.MealPlan)),
		zap.Int("shopping_items", len(plan.ShoppingList)),
	)
	return plan, nil
}

func buildPlanPrompt(days int, dietary, budget string) string {
	return fmt.Sprintf(`Create a %d-day %s meal plan with %s budget.

IMPORTANT: Use SPECIFIC meal names, not generic ones like "Healthy Breakfast". Be creative and specific!

For each day, provide:
- Breakfast (300-400 calories)
- Lunch (400-500 calories)
- Dinner (500-600 calories)
- Snack (150-250 calories)

Format EXACTLY like this example:

Monday
breakfast
**** Scrambled Eggs with Spinach (350 cal)
1 cup spinach, 2 eggs, 1 tbsp olive oil, salt, pepper

lunch
**** Quinoa Buddha Bowl (450 cal)
1 cup quinoa, 1/2 avocado, cherry tomatoes, cucumber, tahini dressing

dinner
**** Baked Salmon with Roasted Vegetables (550 cal)
4oz salmon, broccoli, carrots, sweet potato, lemon, herbs

snack
**** Greek Yogurt with Berries (200 cal)
1 cup Greek yogurt, 1/2 cup mixed berries, 1 tbsp honey

Continue this format for all %d days. Use different specific meals each day!`, days, dietary, budget, days)
}

var (
	daySplitPattern = regexp.MustCompile(`(?i)(?m)^\s*(?:\*+\s*)?(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`)
	mealNamePattern = regexp.MustCompile(`\*{2,}\s*(.+?)\s*\((\d+)\s*cal`)
	slotKeywords    = []string{"breakfast", "lunch", "dinner", "snack"}
)

// parsePlanText turns free-form model output into a complete plan. Day sections
// are split on weekday headers; within a section, slot keywords select the meal
// being filled and "**** Name (N cal)" lines carry name and calories, with the
// following line read as the ingredient list.
func parsePlanText(text string, days int, dietary, budget string) *MealPlan {
	sections := splitDaySections(text)

	plan := make([]PlanDay, 0, days)
	shopping := newStringSet()

	for i := 0; i < days && i < len(sections); i++ {
		meals := extractMeals(sections[i], dietary)
		plan = append(plan, buildPlanDay(daysOfWeek[i], meals, shopping))
	}

	// Pad to the requested length when the model under-delivered.
	for len(plan) < days {
		meals := map[string]*Meal{}
		for _, slot := range slotKeywords {
			m := defaultMeal(slot, dietary)
			meals[slot] = &m
		}
		plan = append(plan, buildPlanDay(daysOfWeek[len(plan)], meals, shopping))
	}

	totalCalories := 0
	for _, d := range plan {
		totalCalories += d.TotalCalories
	}
	avg := 0
	if len(plan) > 0 {
		avg = totalCalories / len(plan)
	}

	costPerDay := 12
	switch budget {
	case "low":
		costPerDay = 8
	case "high":
		costPerDay = 20
	}

	return &MealPlan{
		MealPlan:      plan,
		ShoppingList:  shopping.items,
		EstimatedCost: costPerDay * days,
		NutritionSummary: NutritionSummary{
			AvgCaloriesPerDay: avg,
			BalanceScore:      85,
		},
	}
}

func splitDaySections(text string) []string {
	idx := daySplitPattern.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	sections := make([]string, 0, len(idx))
	for i, loc := range idx {
		end := len(text)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		sections = append(sections, text[loc[0]:end])
	}
	return sections
}

// extractMeals walks a day section line by line. A slot keyword arms the slot;
// the next "**** Name (N cal)" line fills it, and the line after that becomes
// the ingredient list. Missing slots fall back to the built-in rotation.
func extractMeals(section, dietary string) map[string]*Meal {
	meals := map[string]*Meal{}

	lines := strings.Split(section, "\n")
	currentSlot := ""
	var currentMeal *Meal

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if slot := slotKeyword(line); slot != "" {
			currentSlot = slot
			currentMeal = nil
		}

		if m := mealNamePattern.FindStringSubmatch(line); m != nil && currentSlot != "" && meals[currentSlot] == nil {
			calories, _ := strconv.Atoi(m[2])
			meal := &Meal{
				Name:     strings.TrimSpace(m[1]),
				Calories: calories,
			}
			meals[currentSlot] = meal
			currentMeal = meal
			continue
		}

		if currentMeal != nil && len(currentMeal.Ingredients) == 0 && !strings.Contains(strings.ToLower(line), "cal") {
			currentMeal.Ingredients = parseIngredientLine(line)
			currentMeal = nil
		}
	}

	for _, slot := range slotKeywords {
		if meals[slot] == nil {
			m := defaultMeal(slot, dietary)
			meals[slot] = &m
		} else if len(meals[slot].Ingredients) == 0 {
			meals[slot].Ingredients = []string{"mixed ingredients"}
		}
	}
	return meals
}

func slotKeyword(line string) string {
	lower := strings.ToLower(line)
	// A meal header line mentions the slot without being a name line.
	if strings.Contains(line, "****") {
		return ""
	}
	for _, slot := range slotKeywords {
		if strings.Contains(lower, slot) {
			return slot
		}
	}
	return ""
}

func parseIngredientLine(line string) []string {
	parts := strings.Split(line, ",")
	ingredients := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > 2 && len(p) < 50 {
			ingredients = append(ingredients, p)
		}
		if len(ingredients) == 5 {
			break
		}
	}
	if len(ingredients) == 0 {
		return []string{"mixed ingredients"}
	}
	return ingredients
}

func buildPlanDay(day string, meals map[string]*Meal, shopping *stringSet) PlanDay {
	dm := DayMeals{
		Breakfast: *meals["breakfast"],
		Lunch:     *meals["lunch"],
		Dinner:    *meals["dinner"],
		Snack:     *meals["snack"],
	}

	total := 0
	for _, m := range meals {
		total += m.Calories
		for _, ing := range m.Ingredients {
			shopping.add(ing)
		}
	}

	return PlanDay{
		Day:           day,
		Meals:         dm,
		TotalCalories: total,
	}
}

// mealRotation provides reasonable stand-ins when the model leaves a slot
// empty. Picked at random for variety.
var mealRotation = map[string][]Meal{
	"breakfast": {
		{Name: "Oatmeal with Berries", Calories: 350, Ingredients: []string{"oats", "berries", "milk"}},
		{Name: "Scrambled Eggs & Toast", Calories: 380, Ingredients: []string{"eggs", "bread", "butter"}},
		{Name: "Greek Yogurt Parfait", Calories: 320, Ingredients: []string{"yogurt", "granola", "honey"}},
		{Name: "Avocado Toast", Calories: 400, Ingredients: []string{"bread", "avocado", "eggs"}},
	},
	"lunch": {
		{Name: "Grilled Chicken Salad", Calories: 450, Ingredients: []string{"chicken", "lettuce", "vegetables"}},
		{Name: "Quinoa Buddha Bowl", Calories: 480, Ingredients: []string{"quinoa", "chickpeas", "vegetables"}},
		{Name: "Turkey Sandwich", Calories: 420, Ingredients: []string{"bread", "turkey", "lettuce"}},
		{Name: "Vegetable Stir Fry", Calories: 380, Ingredients: []string{"rice", "vegetables", "tofu"}},
	},
	"dinner": {
		{Name: "Baked Salmon with Veggies", Calories: 550, Ingredients: []string{"salmon", "broccoli", "potatoes"}},
		{Name: "Chicken Curry with Rice", Calories: 580, Ingredients: []string{"chicken", "rice", "curry sauce"}},
		{Name: "Pasta Primavera", Calories: 520, Ingredients: []string{"pasta", "vegetables", "olive oil"}},
		{Name: "Beef Tacos", Calories: 600, Ingredients: []string{"beef", "tortillas", "cheese"}},
	},
	"snack": {
		{Name: "Apple with Peanut Butter", Calories: 200, Ingredients: []string{"apple", "peanut butter"}},
		{Name: "Mixed Nuts", Calories: 180, Ingredients: []string{"almonds", "cashews", "walnuts"}},
		{Name: "Hummus with Carrots", Calories: 150, Ingredients: []string{"hummus", "carrots"}},
		{Name: "Protein Bar", Calories: 220, Ingredients: []string{"protein bar"}},
	},
}

func defaultMeal(slot, dietary string) Meal {
	variations, ok := mealRotation[slot]
	if !ok {
		variations = mealRotation["snack"]
	}
	return variations[rand.Intn(len(variations))]
}

// stringSet keeps first-seen order, unlike a bare map.
type stringSet struct {
	seen  map[string]struct{}
	items []string
}

func newStringSet() *stringSet {
	return &stringSet{
		seen:  make(map[string]struct{}),
		items: []string{},
	}
}

func (s *stringSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}
