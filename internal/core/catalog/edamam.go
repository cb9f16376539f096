package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"go.uber.org/zap"

	"github.com/go-resty/resty/v2"
)

// cuisineTypeMap translates our region names into the paid catalog's cuisine
// types. Regions it has no label for borrow the closest one.
var cuisineTypeMap = map[string]string{
	"indian":   "Indian",
	"chinese":  "Chinese",
	"japanese": "Japanese",
	"italian":  "Italian",
	"french":   "French",
	"mexican":  "Mexican",
	"thai":     "Thai",
	"greek":    "Greek",
	"american": "American",
	"british":  "British",
	"spanish":  "French",
	"moroccan": "Middle Eastern",
	"turkish":  "Middle Eastern",
}

// dietParams maps a dietary tag onto the paid catalog's diet/health labels.
var dietParams = map[string]struct{ diet, health string }{
	"vegetarian": {health: "vegetarian"},
	"vegan":      {health: "vegan"},
	"keto":       {diet: "low-carb", health: "keto-friendly"},
	"paleo":      {health: "paleo"},
	"seafood":    {health: "pescatarian"},
}

// CuisineForRegion returns the paid catalog's cuisine type for a region, or ""
// when there is no mapping.
func CuisineForRegion(region string) string {
	return cuisineTypeMap[strings.ToLower(region)]
}

// EdamamClient talks to the paid recipe search and nutrition catalog. Missing
// credentials make every call return an empty result, never an error, so the
// aggregation stays functional with the free catalog alone.
type EdamamClient struct {
	appID     string
	appKey    string
	search    *resty.Client
	nutrition *resty.Client
}

// NewEdamamClient creates a paid-catalog client.
func NewEdamamClient(cfg *config.Config) *EdamamClient {
	return &EdamamClient{
		appID:     cfg.Edamam.AppID,
		appKey:    cfg.Edamam.AppKey,
		search:    resty.New().SetBaseURL(cfg.Edamam.SearchBaseURL).SetTimeout(cfg.Edamam.Timeout),
		nutrition: resty.New().SetBaseURL(cfg.Edamam.NutritionBaseURL).SetTimeout(cfg.Edamam.Timeout),
	}
}

// Enabled reports whether credentials are configured.
func (c *EdamamClient) Enabled() bool {
	return c.appID != "" && c.appKey != ""
}

type edamamHit struct {
	Recipe struct {
		URI             string   `json:"uri"`
		Label           string   `json:"label"`
		Image           string   `json:"image"`
		Source          string   `json:"source"`
		URL             string   `json:"url"`
		DishType        []string `json:"dishType"`
		CuisineType     []string `json:"cuisineType"`
		DietLabels      []string `json:"dietLabels"`
		IngredientLines []string `json:"ingredientLines"`
	} `json:"recipe"`
}

type edamamSearchPayload struct {
	Hits []edamamHit `json:"hits"`
}

// Search queries the paid catalog by free text with optional cuisine type and
// dietary tag, windowed by offset/limit. Failures and missing credentials both
// degrade to an empty result.
func (c *EdamamClient) Search(ctx context.Context, query, cuisineType, dietary string, limit, offset int) []Recipe {
	if !c.Enabled() {
		common.LogDebug("paid catalog credentials not configured, skipping fetch")
		return nil
	}

	if query == "" {
		query = "recipe"
	}
	if offset <= 0 {
		// A random window keeps repeated unpaginated queries from returning
		// the same slice of the catalog.
		offset = rand.Intn(50)
	}

	params := map[string]string{
		"type":    "public",
		"app_id":  c.appID,
		"app_key": c.appKey,
		"q":       query,
		"random":  "true",
		"from":    fmt.Sprintf("%d", offset),
		"to":      fmt.Sprintf("%d", offset+limit),
	}
	if cuisineType != "" {
		params["cuisineType"] = cuisineType
	}
	if p, ok := dietParams[strings.ToLower(dietary)]; ok {
		if p.diet != "" {
			params["diet"] = p.diet
		}
		if p.health != "" {
			params["health"] = p.health
		}
	}

	start := time.Now()
	resp, err := c.search.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("")
	if err != nil {
		common.LogSourceCall(SourceEdamam, "search", 0, time.Since(start), err)
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogSourceCall(SourceEdamam, "search", 0, time.Since(start),
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
		return nil
	}

	var payload edamamSearchPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		common.LogSourceCall(SourceEdamam, "search", 0, time.Since(start), err)
		return nil
	}

	recipes := make([]Recipe, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		recipes = append(recipes, normalizeHit(hit, cuisineType))
	}
	common.LogSourceCall(SourceEdamam, "search", len(recipes), time.Since(start), nil)

	return recipes
}

// normalizeHit maps one paid-catalog hit into the shared Recipe shape. Ids are
// namespaced with the source prefix so they can never collide with free-catalog
// ids in a merged result.
func normalizeHit(hit edamamHit, cuisineType string) Recipe {
	r := hit.Recipe

	id := ""
	if idx := strings.Index(r.URI, "#"); idx >= 0 {
		id = r.URI[idx+1:]
	}
	if id == "" {
		id = strings.ReplaceAll(r.Label, " ", "_")
	}

	area := cuisineType
	if len(r.CuisineType) > 0 {
		area = r.CuisineType[0]
	}
	if area == "" {
		area = "International"
	}

	category := "Main course"
	if len(r.DishType) > 0 {
		category = r.DishType[0]
	}

	// The paid catalog ships no instructions, only a link; keep both the link
	// and the ingredient lines readable.
	instructions := strings.Join(r.IngredientLines, "\n")
	if r.URL != "" {
		instructions = fmt.Sprintf("View full recipe at: %s\n\n%s", r.URL, instructions)
	}
	if instructions == "" {
		instructions = "No instructions available"
	}

	ingredients := make([]IngredientRef, 0, len(r.IngredientLines))
	for _, line := range r.IngredientLines {
		ingredients = append(ingredients, IngredientRef{Name: line})
	}

	return Recipe{
		ID:           "edamam-" + id,
		Name:         r.Label,
		Category:     category,
		Area:         NormalizeArea(area),
		ImageURL:     r.Image,
		Instructions: instructions,
		Ingredients:  ingredients,
		VideoURL:     "",
		Tags:         r.DietLabels,
		SourceName:   SourceEdamam,
		SourceURL:    r.URL,
	}
}

// Nutrient is one nutrient entry of a nutrition analysis.
type Nutrient struct {
	Label    string  `json:"label"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// NutritionTotals is the raw result of a paid-catalog nutrition analysis.
type NutritionTotals struct {
	Calories       float64             `json:"calories"`
	TotalNutrients map[string]Nutrient `json:"totalNutrients"`
	TotalDaily     map[string]Nutrient `json:"totalDaily"`
	DietLabels     []string            `json:"dietLabels"`
	HealthLabels   []string            `json:"healthLabels"`
}

// AnalyzeNutrition submits ingredient lines for full nutrition analysis. Unlike
// Search, failures surface as errors here so the caller can fall back to its
// deterministic estimate.
func (c *EdamamClient) AnalyzeNutrition(ctx context.Context, title string, ingredientLines []string) (*NutritionTotals, error) {
	if !c.Enabled() {
		return nil, common.ErrSourceDisabled
	}

	start := time.Now()
	resp, err := c.nutrition.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"app_id":  c.appID,
			"app_key": c.appKey,
		}).
		SetBody(map[string]interface{}{
			"title": title,
			"ingr":  ingredientLines,
		}).
		Post("")
	if err != nil {
		common.LogSourceCall(SourceEdamam, "nutrition", 0, time.Since(start), err)
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode())
		common.LogSourceCall(SourceEdamam, "nutrition", 0, time.Since(start), err)
		return nil, err
	}

	var totals NutritionTotals
	if err := json.Unmarshal(resp.Body(), &totals); err != nil {
		common.LogSourceCall(SourceEdamam, "nutrition", 0, time.Since(start), err)
		return nil, err
	}

	common.LogDebug("nutrition analysis completed",
		zap.String("title", title),
		zap.Int("ingredients", len(ingredientLines)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &totals, nil
}
