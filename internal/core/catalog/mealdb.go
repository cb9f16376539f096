package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"chefmind/internal/infrastructure/cache"
	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// maxIngredientSlots is the number of strIngredientN/strMeasureN pairs the free
// catalog puts on a meal record.
const maxIngredientSlots = 20

// Stub is the minimal record returned by the free catalog's filter endpoints.
// A second lookup per id is required for full detail.
type Stub struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image"`
}

// MealDBClient talks to the free recipe catalog. It needs no credentials, but it
// is rate-limited, so filter and lookup payloads go through the shared cache.
type MealDBClient struct {
	client *resty.Client
	cache  *cache.Manager
}

// NewMealDBClient creates a free-catalog client.
func NewMealDBClient(cfg *config.Config, cacheManager *cache.Manager) *MealDBClient {
	client := resty.New().
		SetBaseURL(cfg.MealDB.BaseURL).
		SetTimeout(cfg.MealDB.Timeout)

	return &MealDBClient{
		client: client,
		cache:  cacheManager,
	}
}

type mealListPayload struct {
	Meals []map[string]interface{} `json:"meals"`
}

// FilterByIngredient returns stubs of meals containing the given ingredient.
// Failures degrade to an empty result.
func (c *MealDBClient) FilterByIngredient(ctx context.Context, ingredient string) []Stub {
	return c.filter(ctx, "i", ingredient)
}

// FilterByArea returns stubs of meals from the given region.
func (c *MealDBClient) FilterByArea(ctx context.Context, area string) []Stub {
	return c.filter(ctx, "a", area)
}

// FilterByCategory returns stubs of meals in the given category.
func (c *MealDBClient) FilterByCategory(ctx context.Context, category string) []Stub {
	return c.filter(ctx, "c", category)
}

func (c *MealDBClient) filter(ctx context.Context, param, value string) []Stub {
	cacheKey := fmt.Sprintf("filter:%s:%s", param, strings.ToLower(value))
	if cached, err := c.cache.Get(ctx, "mealdb", cacheKey); err == nil {
		var stubs []Stub
		if err := json.Unmarshal([]byte(cached), &stubs); err == nil {
			return stubs
		}
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam(param, value).
		Get("/filter.php")
	if err != nil {
		common.LogSourceCall(SourceMealDB, "filter."+param, 0, time.Since(start), err)
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogSourceCall(SourceMealDB, "filter."+param, 0, time.Since(start),
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
		return nil
	}

	var payload mealListPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		common.LogSourceCall(SourceMealDB, "filter."+param, 0, time.Since(start), err)
		return nil
	}

	stubs := make([]Stub, 0, len(payload.Meals))
	for _, meal := range payload.Meals {
		stub := Stub{
			ID:       getStr(meal, "idMeal"),
			Name:     getStr(meal, "strMeal"),
			ImageURL: getStr(meal, "strMealThumb"),
		}
		if stub.ID != "" {
			stubs = append(stubs, stub)
		}
	}
	common.LogSourceCall(SourceMealDB, "filter."+param, len(stubs), time.Since(start), nil)

	if data, err := json.Marshal(stubs); err == nil {
		_ = c.cache.Set(ctx, "mealdb", cacheKey, string(data))
	}

	return stubs
}

// Lookup fetches the full record for one meal id. It returns ErrRecipeNotFound
// when the catalog has no such id.
func (c *MealDBClient) Lookup(ctx context.Context, id string) (*Recipe, error) {
	cacheKey := "lookup:" + id
	if cached, err := c.cache.Get(ctx, "mealdb", cacheKey); err == nil {
		var recipe Recipe
		if err := json.Unmarshal([]byte(cached), &recipe); err == nil {
			return &recipe, nil
		}
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("i", id).
		Get("/lookup.php")
	if err != nil {
		common.LogSourceCall(SourceMealDB, "lookup", 0, time.Since(start), err)
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode())
		common.LogSourceCall(SourceMealDB, "lookup", 0, time.Since(start), err)
		return nil, err
	}

	var payload mealListPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		common.LogSourceCall(SourceMealDB, "lookup", 0, time.Since(start), err)
		return nil, err
	}
	if len(payload.Meals) == 0 {
		return nil, common.ErrRecipeNotFound
	}

	recipe := normalizeMeal(payload.Meals[0])
	common.LogSourceCall(SourceMealDB, "lookup", 1, time.Since(start), nil)

	if data, err := json.Marshal(recipe); err == nil {
		_ = c.cache.Set(ctx, "mealdb", cacheKey, string(data))
	}

	return recipe, nil
}

// Random fetches one random meal. The catalog has no bulk-random endpoint, so
// callers needing several issue several calls.
func (c *MealDBClient) Random(ctx context.Context) (*Recipe, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/random.php")
	if err != nil {
		common.LogSourceCall(SourceMealDB, "random", 0, time.Since(start), err)
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode())
		common.LogSourceCall(SourceMealDB, "random", 0, time.Since(start), err)
		return nil, err
	}

	var payload mealListPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		common.LogSourceCall(SourceMealDB, "random", 0, time.Since(start), err)
		return nil, err
	}
	if len(payload.Meals) == 0 {
		return nil, common.ErrRecipeNotFound
	}

	common.LogSourceCall(SourceMealDB, "random", 1, time.Since(start), nil)
	return normalizeMeal(payload.Meals[0]), nil
}

// LookupAll resolves up to limit stubs to full records, one lookup per id, all
// outstanding at once. A failed member is dropped; it never fails the batch.
func (c *MealDBClient) LookupAll(ctx context.Context, stubs []Stub, limit int) []Recipe {
	if limit > len(stubs) {
		limit = len(stubs)
	}
	if limit <= 0 {
		return nil
	}

	results := make([]*Recipe, limit)
	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			recipe, err := c.Lookup(ctx, id)
			if err != nil {
				common.LogDebug("dropping failed detail lookup",
					zap.String("id", id),
					zap.Error(err),
				)
				return
			}
			results[i] = recipe
		}(i, stubs[i].ID)
	}
	wg.Wait()

	recipes := make([]Recipe, 0, limit)
	for _, r := range results {
		if r != nil {
			recipes = append(recipes, *r)
		}
	}
	return recipes
}

// normalizeMeal maps the free catalog's flat strIngredientN/strMeasureN record
// into the shared Recipe shape.
func normalizeMeal(meal map[string]interface{}) *Recipe {
	ingredients := make([]IngredientRef, 0, maxIngredientSlots)
	for i := 1; i <= maxIngredientSlots; i++ {
		name := strings.TrimSpace(getStr(meal, fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		measure := strings.TrimSpace(getStr(meal, fmt.Sprintf("strMeasure%d", i)))
		ingredients = append(ingredients, IngredientRef{Name: name, Measure: measure})
	}

	return &Recipe{
		ID:           getStr(meal, "idMeal"),
		Name:         getStr(meal, "strMeal"),
		Category:     getStr(meal, "strCategory"),
		Area:         NormalizeArea(getStr(meal, "strArea")),
		ImageURL:     getStr(meal, "strMealThumb"),
		Instructions: getStr(meal, "strInstructions"),
		Ingredients:  ingredients,
		VideoURL:     getStr(meal, "strYoutube"),
		Tags:         SplitTags(getStr(meal, "strTags")),
		SourceName:   SourceMealDB,
		SourceURL:    getStr(meal, "strSource"),
	}
}

func getStr(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
