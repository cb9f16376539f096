package recipe

import (
	"context"
	"testing"

	"chefmind/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedPlan = `Monday
breakfast
**** Scrambled Eggs with Spinach (350 cal)
1 cup spinach, 2 eggs, 1 tbsp olive oil

lunch
**** Quinoa Buddha Bowl (450 cal)
1 cup quinoa, 1/2 avocado, cherry tomatoes

dinner
**** Baked Salmon with Roasted Vegetables (550 cal)
4oz salmon, broccoli, carrots

snack
**** Greek Yogurt with Berries (200 cal)
1 cup Greek yogurt, mixed berries

Tuesday
breakfast
**** Overnight Oats with Banana (360 cal)
1 cup oats, 1 banana, almond milk

lunch
**** Chicken Caesar Wrap (480 cal)
1 tortilla, grilled chicken, romaine

dinner
**** Beef Stir Fry with Peppers (560 cal)
6oz beef, bell peppers, soy sauce

snack
**** Apple with Almond Butter (190 cal)
1 apple, 2 tbsp almond butter
`

func TestGenerate_ParsesWellFormedPlan(t *testing.T) {
	ai := &fakeCompleter{enabled: true, response: wellFormedPlan}
	svc := NewMealPlanService(ai)

	plan, err := svc.Generate(context.Background(), PlanRequest{Days: 2, Dietary: "balanced", Budget: "moderate"})

	require.NoError(t, err)
	require.Len(t, plan.MealPlan, 2)

	monday := plan.MealPlan[0]
	assert.Equal(t, "Monday", monday.Day)
	assert.Equal(t, "Scrambled Eggs with Spinach", monday.Meals.Breakfast.Name)
	assert.Equal(t, 350, monday.Meals.Breakfast.Calories)
	assert.Equal(t, []string{"1 cup spinach", "2 eggs", "1 tbsp olive oil"}, monday.Meals.Breakfast.Ingredients)
	assert.Equal(t, 350+450+550+200, monday.TotalCalories)

	tuesday := plan.MealPlan[1]
	assert.Equal(t, "Tuesday", tuesday.Day)
	assert.Equal(t, "Beef Stir Fry with Peppers", tuesday.Meals.Dinner.Name)

	assert.Contains(t, plan.ShoppingList, "1 cup quinoa")
	assert.Contains(t, plan.ShoppingList, "6oz beef")
	assert.Equal(t, 24, plan.EstimatedCost)
	assert.Equal(t, (1550+1590)/2, plan.NutritionSummary.AvgCaloriesPerDay)
	assert.Equal(t, 85, plan.NutritionSummary.BalanceScore)
}

func TestGenerate_PadsMissingDays(t *testing.T) {
	// Two parseable days for a three-day request.
	ai := &fakeCompleter{enabled: true, response: wellFormedPlan}
	svc := NewMealPlanService(ai)

	plan, err := svc.Generate(context.Background(), PlanRequest{Days: 3})

	require.NoError(t, err)
	require.Len(t, plan.MealPlan, 3)
	assert.Equal(t, "Wednesday", plan.MealPlan[2].Day)
	// Padded days still carry four complete meals.
	assert.NotEmpty(t, plan.MealPlan[2].Meals.Breakfast.Name)
	assert.NotEmpty(t, plan.MealPlan[2].Meals.Snack.Name)
	assert.Positive(t, plan.MealPlan[2].TotalCalories)
}

func TestGenerate_GarbageTextStillYieldsCompletePlan(t *testing.T) {
	ai := &fakeCompleter{enabled: true, response: "Sorry, here are some loose ideas about food."}
	svc := NewMealPlanService(ai)

	plan, err := svc.Generate(context.Background(), PlanRequest{Days: 7})

	require.NoError(t, err)
	require.Len(t, plan.MealPlan, 7)
	for _, day := range plan.MealPlan {
		assert.NotEmpty(t, day.Meals.Breakfast.Name)
		assert.NotEmpty(t, day.Meals.Lunch.Name)
		assert.NotEmpty(t, day.Meals.Dinner.Name)
		assert.NotEmpty(t, day.Meals.Snack.Name)
		assert.Positive(t, day.TotalCalories)
	}
	assert.NotEmpty(t, plan.ShoppingList)
}

func TestGenerate_MissingSlotFallsBackWithinDay(t *testing.T) {
	partial := `Monday
breakfast
**** Porridge (300 cal)
oats, water, honey
`
	ai := &fakeCompleter{enabled: true, response: partial}
	svc := NewMealPlanService(ai)

	plan, err := svc.Generate(context.Background(), PlanRequest{Days: 1})

	require.NoError(t, err)
	require.Len(t, plan.MealPlan, 1)
	day := plan.MealPlan[0]
	assert.Equal(t, "Porridge", day.Meals.Breakfast.Name)
	assert.NotEmpty(t, day.Meals.Lunch.Name)
	assert.NotEmpty(t, day.Meals.Dinner.Name)
	assert.NotEmpty(t, day.Meals.Snack.Name)
}

func TestGenerate_CostPerBudgetLevel(t *testing.T) {
	tests := []struct {
		budget string
		days   int
		want   int
	}{
		{"low", 7, 56},
		{"high", 7, 140},
		{"moderate", 7, 84},
		{"", 7, 84},
		{"low", 3, 24},
	}

	for _, tt := range tests {
		ai := &fakeCompleter{enabled: true, response: wellFormedPlan}
		svc := NewMealPlanService(ai)

		plan, err := svc.Generate(context.Background(), PlanRequest{Days: tt.days, Budget: tt.budget})

		require.NoError(t, err)
		assert.Equal(t, tt.want, plan.EstimatedCost, "budget %q over %d days", tt.budget, tt.days)
	}
}

func TestGenerate_ErrorsWhenModelDisabled(t *testing.T) {
	svc := NewMealPlanService(&fakeCompleter{enabled: false})

	_, err := svc.Generate(context.Background(), PlanRequest{Days: 7})

	assert.Equal(t, common.ErrSourceDisabled, err)
}

func TestGenerate_DefaultsDaysToSeven(t *testing.T) {
	ai := &fakeCompleter{enabled: true, response: wellFormedPlan}
	svc := NewMealPlanService(ai)

	plan, err := svc.Generate(context.Background(), PlanRequest{Days: 0})

	require.NoError(t, err)
	assert.Len(t, plan.MealPlan, 7)
}

func TestParseIngredientLine(t *testing.T) {
	assert.Equal(t,
		[]string{"1 cup rice", "2 eggs", "soy sauce"},
		parseIngredientLine("1 cup rice, 2 eggs, soy sauce"))

	// Over-long and tiny fragments are dropped; an empty line degrades to the
	// generic placeholder.
	assert.Equal(t, []string{"mixed ingredients"}, parseIngredientLine(""))

	capped := parseIngredientLine("a1, b2c, three, four x, five y, six z, seven q")
	assert.Len(t, capped, 5)
}
