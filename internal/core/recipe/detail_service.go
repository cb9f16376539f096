package recipe

import (
	"context"
	"fmt"
	"strings"

	"chefmind/internal/core/catalog"
	"chefmind/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeLookup resolves one free-catalog id to a full recipe.
type RecipeLookup interface {
	Lookup(ctx context.Context, id string) (*catalog.Recipe, error)
}

// Completer produces one text completion. Satisfied by the groq client.
type Completer interface {
	Complete(ctx context.Context, model, system, prompt string, maxTokens int, temperature float64) (string, error)
	Enabled() bool
	Model() string
}

// DetailService resolves a recipe by id and annotates it with prep time, cook
// time and servings, model-estimated when possible.
type DetailService struct {
	lookup RecipeLookup
	ai     Completer
}

// NewDetailService creates a detail service.
func NewDetailService(lookup RecipeLookup, ai Completer) *DetailService {
	return &DetailService{
		lookup: lookup,
		ai:     ai,
	}
}

type timingEstimate struct {
	PrepTime int `json:"prepTime"`
	CookTime int `json:"cookTime"`
	Servings int `json:"servings"`
}

const detailSystemPrompt = "You are a professional chef analyzer. Always respond with ONLY valid JSON, no markdown, no explanations."

// GetByID returns the detailed recipe, or common.ErrRecipeNotFound when the id
// does not exist in the free catalog.
func (s *DetailService) GetByID(ctx context.Context, id string) (*DetailedRecipe, error) {
	found, err := s.lookup.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	detailed := &DetailedRecipe{Recipe: *found}

	if estimate := s.analyzeTiming(ctx, found); estimate != nil {
		detailed.PrepTime = estimate.PrepTime
		detailed.CookTime = estimate.CookTime
		detailed.Servings = estimate.Servings
	} else {
		detailed.PrepTime = fallbackPrepTime(len(found.Ingredients))
		detailed.CookTime = 30
		detailed.Servings = 4
	}

	return detailed, nil
}

// analyzeTiming asks the model for timing figures. Any failure returns nil; the
// caller falls back to heuristics.
func (s *DetailService) analyzeTiming(ctx context.Context, r *catalog.Recipe) *timingEstimate {
	if s.ai == nil || !s.ai.Enabled() {
		return nil
	}

	instructions := r.Instructions
	if len(instructions) > 500 {
		instructions = instructions[:500] + "..."
	}

	var lines strings.Builder
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&lines, "- %s %s\n", ing.Measure, ing.Name)
	}

	prompt := fmt.Sprintf(`Analyze this recipe and provide ONLY a JSON response with exact prep time, cook time, and servings.

Recipe: %s

Ingredients:
%s
Instructions:
%s

Respond with ONLY this JSON format, no other text:
{
  "prepTime": <number in minutes>,
  "cookTime": <number in minutes>,
  "servings": <number of people>
}`, r.Name, lines.String(), instructions)

	content, err := s.ai.Complete(ctx, s.ai.Model(), detailSystemPrompt, prompt, 150, 0.3)
	if err != nil {
		common.LogWarn("timing analysis failed, using estimates",
			zap.String("recipe_id", r.ID),
			zap.Error(err),
		)
		return nil
	}

	var estimate timingEstimate
	if err := common.ParseJSON(common.StripCodeFences(content), &estimate); err != nil {
		common.LogWarn("timing analysis returned unparseable content",
			zap.String("recipe_id", r.ID),
			zap.Error(err),
		)
		return nil
	}

	if estimate.PrepTime <= 0 {
		estimate.PrepTime = 15
	}
	if estimate.CookTime <= 0 {
		estimate.CookTime = 30
	}
	if estimate.Servings <= 0 {
		estimate.Servings = 4
	}
	return &estimate
}

// fallbackPrepTime grows with ingredient count, capped at 30 minutes.
func fallbackPrepTime(ingredientCount int) int {
	prep := 15 + ingredientCount*2
	if prep > 30 {
		prep = 30
	}
	return prep
}
