package recipes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"chefmind/internal/core/aggregate"
	"chefmind/internal/core/catalog"
	"chefmind/internal/core/recipe"
	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type fakeFree struct {
	byArea  map[string][]catalog.Stub
	recipes map[string]catalog.Recipe
}

func (f *fakeFree) FilterByIngredient(_ context.Context, _ string) []catalog.Stub { return nil }

func (f *fakeFree) FilterByArea(_ context.Context, area string) []catalog.Stub {
	return f.byArea[strings.ToLower(area)]
}

func (f *fakeFree) FilterByCategory(_ context.Context, _ string) []catalog.Stub { return nil }

func (f *fakeFree) LookupAll(_ context.Context, stubs []catalog.Stub, limit int) []catalog.Recipe {
	if limit > len(stubs) {
		limit = len(stubs)
	}
	out := make([]catalog.Recipe, 0, limit)
	for _, stub := range stubs[:limit] {
		if r, ok := f.recipes[stub.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeFree) Random(_ context.Context) (*catalog.Recipe, error) {
	return nil, common.ErrRecipeNotFound
}

func (f *fakeFree) Lookup(_ context.Context, id string) (*catalog.Recipe, error) {
	if r, ok := f.recipes[id]; ok {
		return &r, nil
	}
	return nil, common.ErrRecipeNotFound
}

type fakePaid struct{}

func (fakePaid) Search(_ context.Context, _, _, _ string, _, _ int) []catalog.Recipe { return nil }

type fakeAI struct {
	enabled  bool
	response string
}

func (f *fakeAI) Complete(_ context.Context, _, _, _ string, _ int, _ float64) (string, error) {
	return f.response, nil
}
func (f *fakeAI) Enabled() bool     { return f.enabled }
func (f *fakeAI) Model() string     { return "test-model" }
func (f *fakeAI) PlanModel() string { return "test-plan-model" }

func testHandler(free *fakeFree, ai *fakeAI) *Handler {
	cfg := config.AggregationConfig{
		DefaultPageSize:   12,
		FilterMultiplier:  3,
		ExcludeMultiplier: 3,
		BothMultiplier:    5,
		MaxRandomCalls:    12,
		PerIngredientCap:  10,
	}
	return NewHandler(
		aggregate.NewAggregator(free, fakePaid{}, cfg),
		recipe.NewDetailService(free, ai),
		recipe.NewNutritionService(nil),
		recipe.NewMealPlanService(ai),
	)
}

func perform(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestHandleDiscover(t *testing.T) {
	free := &fakeFree{
		byArea: map[string][]catalog.Stub{
			"mexican": {{ID: "m-1"}, {ID: "m-2"}},
		},
		recipes: map[string]catalog.Recipe{
			"m-1": {ID: "m-1", Name: "Tacos", Area: "Mexican",
				Ingredients: []catalog.IngredientRef{{Name: "Beef"}}},
			"m-2": {ID: "m-2", Name: "Quesadilla", Area: "Mexican",
				Ingredients: []catalog.IngredientRef{{Name: "Cheese"}}},
		},
	}
	h := testHandler(free, &fakeAI{})

	w := perform(t, h.HandleDiscover, `{"region":"mexican","limit":12}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recipes []struct {
			ID                   string   `json:"id"`
			Name                 string   `json:"name"`
			IngredientMatchCount int      `json:"ingredientMatchCount"`
			MatchedIngredients   []string `json:"matchedUserIngredients"`
			TotalUserIngredients int      `json:"totalUserIngredients"`
		} `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 2)
	assert.Equal(t, 0, resp.Recipes[0].IngredientMatchCount)
	assert.NotNil(t, resp.Recipes[0].MatchedIngredients)
}

func TestHandleDiscover_EmptyResultIsEmptyArray(t *testing.T) {
	h := testHandler(&fakeFree{}, &fakeAI{})

	w := perform(t, h.HandleDiscover, `{"region":"atlantis"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recipes":[]}`, w.Body.String())
}

func TestHandleDiscover_InvalidJSON(t *testing.T) {
	h := testHandler(&fakeFree{}, &fakeAI{})

	w := perform(t, h.HandleDiscover, `{"region":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDetail(t *testing.T) {
	free := &fakeFree{recipes: map[string]catalog.Recipe{
		"52772": {ID: "52772", Name: "Teriyaki Chicken Casserole",
			Ingredients: []catalog.IngredientRef{{Name: "soy sauce", Measure: "3/4 cup"}}},
	}}
	h := testHandler(free, &fakeAI{})

	w := perform(t, h.HandleDetail, `{"id":"52772"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recipe struct {
			ID       string `json:"id"`
			PrepTime int    `json:"prepTime"`
			CookTime int    `json:"cookTime"`
			Servings int    `json:"servings"`
		} `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "52772", resp.Recipe.ID)
	assert.Equal(t, 17, resp.Recipe.PrepTime)
	assert.Equal(t, 30, resp.Recipe.CookTime)
	assert.Equal(t, 4, resp.Recipe.Servings)
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := testHandler(&fakeFree{}, &fakeAI{})

	w := perform(t, h.HandleDetail, `{"id":"0"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Recipe not found")
}

func TestHandleDetail_MissingID(t *testing.T) {
	h := testHandler(&fakeFree{}, &fakeAI{})

	w := perform(t, h.HandleDetail, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleNutrition(t *testing.T) {
	h := testHandler(&fakeFree{}, &fakeAI{})

	w := perform(t, h.HandleNutrition, `{"ingredients":["1 cup rice","2 eggs"],"recipe":{"name":"Fried Rice"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Nutrition struct {
			Calories    int    `json:"calories"`
			HealthScore int    `json:"healthScore"`
			Source      string `json:"source"`
		} `json:"nutrition"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 90, resp.Nutrition.Calories)
	assert.Equal(t, "estimate", resp.Nutrition.Source)
	assert.GreaterOrEqual(t, resp.Nutrition.HealthScore, 30)
	assert.LessOrEqual(t, resp.Nutrition.HealthScore, 95)
}

func TestHandleNutrition_MissingIngredients(t *testing.T) {
	h := testHandler(&fakeFree{}, &fakeAI{})

	w := perform(t, h.HandleNutrition, `{"ingredients":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMealPlan(t *testing.T) {
	ai := &fakeAI{enabled: true, response: "Monday\nbreakfast\n**** Porridge (300 cal)\noats, milk\n"}
	h := testHandler(&fakeFree{}, ai)

	w := perform(t, h.HandleMealPlan, `{"days":1,"dietary":"balanced","budget":"low"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var plan recipe.MealPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	require.Len(t, plan.MealPlan, 1)
	assert.Equal(t, "Porridge", plan.MealPlan[0].Meals.Breakfast.Name)
	assert.Equal(t, 8, plan.EstimatedCost)
}

func TestHandleMealPlan_ModelUnavailable(t *testing.T) {
	h := testHandler(&fakeFree{}, &fakeAI{enabled: false})

	w := perform(t, h.HandleMealPlan, `{"days":7}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to generate meal plan")
}
