package recipes

import (
	"errors"
	"net/http"

	"chefmind/internal/core/aggregate"
	"chefmind/internal/core/recipe"
	"chefmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DiscoverRequest is the body of the recipe discovery endpoint.
type DiscoverRequest struct {
	Ingredients []string `json:"ingredients"`
	Dietary     string   `json:"dietary"`
	Region      string   `json:"region"`
	Limit       int      `json:"limit"`
	ExcludedIDs []string `json:"excludedIds"`
}

// DetailRequest is the body of the recipe detail endpoint.
type DetailRequest struct {
	ID string `json:"id"`
}

// NutritionRequest is the body of the nutrition endpoint. Recipe is optional
// and only contributes the analysis title.
type NutritionRequest struct {
	Ingredients []string `json:"ingredients"`
	Recipe      *struct {
		Name string `json:"name"`
	} `json:"recipe"`
}

// MealPlanRequest is the body of the meal-plan endpoint.
type MealPlanRequest struct {
	Days    int    `json:"days"`
	Dietary string `json:"dietary"`
	Budget  string `json:"budget"`
}

// Handler serves the recipe endpoints.
type Handler struct {
	aggregator *aggregate.Aggregator
	detail     *recipe.DetailService
	nutrition  *recipe.NutritionService
	mealPlan   *recipe.MealPlanService
}

// NewHandler creates a recipe handler.
func NewHandler(aggregator *aggregate.Aggregator, detail *recipe.DetailService, nutrition *recipe.NutritionService, mealPlan *recipe.MealPlanService) *Handler {
	return &Handler{
		aggregator: aggregator,
		detail:     detail,
		nutrition:  nutrition,
		mealPlan:   mealPlan,
	}
}

// HandleDiscover runs the aggregation pipeline and returns a page of scored
// recipes.
func (h *Handler) HandleDiscover(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid discovery request", zap.Error(err))
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid request format"})
		return
	}

	results := h.aggregator.Aggregate(c.Request.Context(), aggregate.Request{
		Ingredients: req.Ingredients,
		Dietary:     aggregate.Dietary(req.Dietary),
		Region:      req.Region,
		PageSize:    req.Limit,
		ExcludedIDs: req.ExcludedIDs,
	})

	if results == nil {
		results = []aggregate.ScoredRecipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": results})
}

// HandleDetail resolves one recipe by id with timing and serving estimates.
func (h *Handler) HandleDetail(c *gin.Context) {
	var req DetailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Recipe ID is required"})
		return
	}

	detailed, err := h.detail.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		var custom *common.CustomError
		if errors.As(err, &custom) && custom.Status == http.StatusNotFound {
			c.JSON(http.StatusNotFound, common.ErrorResponse{Error: "Recipe not found"})
			return
		}
		common.LogError("recipe detail lookup failed",
			zap.String("id", req.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Error:   "Failed to fetch recipe",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": detailed})
}

// HandleNutrition analyzes ingredient lines. It always answers 200 with either
// analyzed or estimated figures.
func (h *Handler) HandleNutrition(c *gin.Context) {
	var req NutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Ingredients are required"})
		return
	}
	if len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Ingredients are required"})
		return
	}

	title := ""
	if req.Recipe != nil {
		title = req.Recipe.Name
	}

	result := h.nutrition.Analyze(c.Request.Context(), title, req.Ingredients)
	c.JSON(http.StatusOK, gin.H{"nutrition": result})
}

// HandleMealPlan generates a multi-day meal plan.
func (h *Handler) HandleMealPlan(c *gin.Context) {
	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{Error: "Invalid request format"})
		return
	}

	plan, err := h.mealPlan.Generate(c.Request.Context(), recipe.PlanRequest{
		Days:    req.Days,
		Dietary: req.Dietary,
		Budget:  req.Budget,
	})
	if err != nil {
		common.LogError("meal plan request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Error:   "Failed to generate meal plan",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, plan)
}
