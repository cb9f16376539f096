package aggregate

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"chefmind/internal/core/catalog"
	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"go.uber.org/zap"
)

// Request is the immutable input of one aggregation call. ExcludedIDs carries
// every id the client has already seen; it is the only pagination state, the
// server holds no cursor between calls.
type Request struct {
	Ingredients []string
	Dietary     Dietary
	Region      string
	PageSize    int
	ExcludedIDs []string
}

// FreeSource is the capability surface of the free catalog the aggregator needs.
type FreeSource interface {
	FilterByIngredient(ctx context.Context, ingredient string) []catalog.Stub
	FilterByArea(ctx context.Context, area string) []catalog.Stub
	FilterByCategory(ctx context.Context, category string) []catalog.Stub
	LookupAll(ctx context.Context, stubs []catalog.Stub, limit int) []catalog.Recipe
	Random(ctx context.Context) (*catalog.Recipe, error)
}

// PaidSource is the capability surface of the paid catalog.
type PaidSource interface {
	Search(ctx context.Context, query, cuisineType, dietary string, limit, offset int) []catalog.Recipe
}

// Aggregator runs the multi-source fetch, filter, dedup and ranking pipeline.
// It is stateless across requests; all tuning lives in the config.
type Aggregator struct {
	free FreeSource
	paid PaidSource
	cfg  config.AggregationConfig
}

// NewAggregator creates an aggregator over the two catalog sources.
func NewAggregator(free FreeSource, paid PaidSource, cfg config.AggregationConfig) *Aggregator {
	return &Aggregator{
		free: free,
		paid: paid,
		cfg:  cfg,
	}
}

func (a *Aggregator) isSparseRegion(region string) bool {
	region = strings.ToLower(region)
	for _, sparse := range a.cfg.SparseRegions {
		if region == sparse {
			return true
		}
	}
	return false
}

// fetchLimit computes the over-fetch size. Combined filters and exclusion lists
// both eat into a batch, so the upstream fetch is inflated to compensate.
func (a *Aggregator) fetchLimit(req Request) int {
	hasFilters := req.Dietary.IsSet() && req.Region != ""
	hasExclusions := len(req.ExcludedIDs) > 0

	switch {
	case hasFilters && hasExclusions:
		return req.PageSize * a.cfg.BothMultiplier
	case hasFilters:
		return req.PageSize * a.cfg.FilterMultiplier
	case hasExclusions:
		return req.PageSize * a.cfg.ExcludeMultiplier
	default:
		return req.PageSize
	}
}

// Aggregate runs the pipeline and returns at most PageSize scored recipes.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) []ScoredRecipe {
	if req.PageSize <= 0 {
		req.PageSize = a.cfg.DefaultPageSize
	}

	fetchLimit := a.fetchLimit(req)
	hasExclusions := len(req.ExcludedIDs) > 0

	common.LogInfo("aggregation started",
		zap.Strings("ingredients", req.Ingredients),
		zap.String("dietary", string(req.Dietary)),
		zap.String("region", req.Region),
		zap.Int("page_size", req.PageSize),
		zap.Int("fetch_limit", fetchLimit),
		zap.Int("excluded", len(req.ExcludedIDs)),
	)

	pool := a.primaryFetch(ctx, req, fetchLimit)

	// The paid catalog supplements whenever the free catalog came up short,
	// whenever the region is thin there, and on every "load more" call, where
	// its offset window is what actually makes progress.
	if a.isSparseRegion(req.Region) || len(pool) < fetchLimit || hasExclusions {
		pool = append(pool, a.supplementalFetch(ctx, req, hasExclusions)...)
	}

	// Last-ditch free-catalog top-up when filters left the pool thin.
	if len(pool) < req.PageSize && (req.Region != "" || req.Dietary.IsSet()) {
		pool = append(pool, a.topUpFetch(ctx, req, pool)...)
	}

	// Strict region filter: exact area equality, case-insensitive. This can
	// legitimately eliminate most of a batch.
	regionFiltered := pool
	if req.Region != "" {
		regionFiltered = filterRegion(pool, req.Region)
		common.LogDebug("region filter applied",
			zap.String("region", req.Region),
			zap.Int("before", len(pool)),
			zap.Int("after", len(regionFiltered)),
		)
		if len(regionFiltered) < req.PageSize/2 {
			common.LogWarn("few recipes match region exactly",
				zap.String("region", req.Region),
				zap.Int("count", len(regionFiltered)),
			)
		}
	}

	filtered := FilterDietary(regionFiltered, req.Dietary)

	// When both filters squeezed the set below half a page, retry with the
	// dietary filter alone against the pre-region pool. The relaxed set is
	// adopted only if it is at least as large; never regress.
	if req.Dietary.IsSet() && req.Region != "" && len(filtered) < req.PageSize/2 {
		relaxed := FilterDietary(pool, req.Dietary)
		if len(relaxed) >= len(filtered) {
			common.LogInfo("relaxed region restriction",
				zap.Int("strict", len(filtered)),
				zap.Int("relaxed", len(relaxed)),
			)
			filtered = relaxed
		}
	}

	unique := Merge(filtered)

	excluded := make(map[string]struct{}, len(req.ExcludedIDs))
	for _, id := range req.ExcludedIDs {
		excluded[id] = struct{}{}
	}
	fresh := make([]catalog.Recipe, 0, len(unique))
	for _, recipe := range unique {
		if _, seen := excluded[recipe.ID]; !seen {
			fresh = append(fresh, recipe)
		}
	}

	scored := ScoreAll(fresh, req.Ingredients)
	if len(req.Ingredients) > 0 {
		SortByMatch(scored)
	}

	if len(scored) > req.PageSize {
		scored = scored[:req.PageSize]
	}

	common.LogInfo("aggregation completed",
		zap.Int("pool", len(pool)),
		zap.Int("after_filters", len(unique)),
		zap.Int("returned", len(scored)),
	)

	return scored
}

// primaryFetch runs the first applicable fetch branch: region, dietary
// category, ingredients, or a bounded random sample.
func (a *Aggregator) primaryFetch(ctx context.Context, req Request, fetchLimit int) []catalog.Recipe {
	hasIngredients := len(req.Ingredients) > 0

	if req.Region != "" && !hasIngredients {
		return a.fetchByRegion(ctx, req.Region, fetchLimit)
	}

	if req.Dietary.IsSet() && !hasIngredients {
		if category := CategoryForDietary(req.Dietary); category != "" {
			if recipes := a.fetchByCategory(ctx, category, fetchLimit); len(recipes) > 0 {
				return recipes
			}
		}
	}

	if hasIngredients {
		return a.fetchByIngredients(ctx, req, fetchLimit)
	}

	return a.fetchRandom(ctx, fetchLimit)
}

func (a *Aggregator) fetchByRegion(ctx context.Context, region string, fetchLimit int) []catalog.Recipe {
	stubs := a.free.FilterByArea(ctx, region)
	if len(stubs) == 0 {
		return nil
	}

	take := fetchLimit
	if a.isSparseRegion(region) {
		// Thin regions get a wider sample; post-filter attrition hits them
		// hardest.
		take = fetchLimit * 2
	}

	shuffleStubs(stubs)
	return a.free.LookupAll(ctx, stubs, take)
}

func (a *Aggregator) fetchByCategory(ctx context.Context, category string, fetchLimit int) []catalog.Recipe {
	stubs := a.free.FilterByCategory(ctx, category)
	if len(stubs) == 0 {
		return nil
	}
	shuffleStubs(stubs)
	return a.free.LookupAll(ctx, stubs, fetchLimit)
}

// fetchByIngredients queries the free catalog once per ingredient, all calls in
// flight at once, resolves the deduplicated union to full records, and queries
// the paid catalog with the joined ingredient text.
func (a *Aggregator) fetchByIngredients(ctx context.Context, req Request, fetchLimit int) []catalog.Recipe {
	perIngredient := make([][]catalog.Stub, len(req.Ingredients))
	var wg sync.WaitGroup
	for i, ingredient := range req.Ingredients {
		wg.Add(1)
		go func(i int, ingredient string) {
			defer wg.Done()
			stubs := a.free.FilterByIngredient(ctx, ingredient)
			if len(stubs) > a.cfg.PerIngredientCap {
				stubs = stubs[:a.cfg.PerIngredientCap]
			}
			perIngredient[i] = stubs
		}(i, ingredient)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	union := make([]catalog.Stub, 0)
	for _, stubs := range perIngredient {
		for _, stub := range stubs {
			if _, dup := seen[stub.ID]; dup {
				continue
			}
			seen[stub.ID] = struct{}{}
			union = append(union, stub)
		}
	}

	recipes := a.free.LookupAll(ctx, union, fetchLimit)

	query := strings.Join(req.Ingredients, " ")
	paid := a.paid.Search(ctx, query, catalog.CuisineForRegion(req.Region), string(req.Dietary), 20, 0)

	return append(recipes, paid...)
}

func (a *Aggregator) fetchRandom(ctx context.Context, fetchLimit int) []catalog.Recipe {
	count := fetchLimit
	if count > a.cfg.MaxRandomCalls {
		count = a.cfg.MaxRandomCalls
	}

	results := make([]*catalog.Recipe, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recipe, err := a.free.Random(ctx)
			if err != nil {
				return
			}
			results[i] = recipe
		}(i)
	}
	wg.Wait()

	recipes := make([]catalog.Recipe, 0, count)
	for _, r := range results {
		if r != nil {
			recipes = append(recipes, *r)
		}
	}
	return recipes
}

// supplementalFetch asks the paid catalog for more, with an offset derived from
// the exclusion-list size so repeated "load more" calls walk forward through
// its result space instead of re-requesting the same window.
func (a *Aggregator) supplementalFetch(ctx context.Context, req Request, hasExclusions bool) []catalog.Recipe {
	count := 25
	if hasExclusions {
		count = 40
	}
	offset := (len(req.ExcludedIDs) / 10) * 20

	query := "recipe"
	switch {
	case req.Dietary == DietarySeafood:
		query = "seafood"
	case req.Region != "":
		query = req.Region
	}

	return a.paid.Search(ctx, query, catalog.CuisineForRegion(req.Region), string(req.Dietary), count, offset)
}

// topUpFetch widens the free-catalog sample when filters left fewer than a page.
// Sparse regions re-sample their area excluding what is already pooled; anything
// else falls back to a small random batch.
func (a *Aggregator) topUpFetch(ctx context.Context, req Request, pool []catalog.Recipe) []catalog.Recipe {
	if a.isSparseRegion(req.Region) {
		existing := make(map[string]struct{}, len(pool))
		for _, recipe := range pool {
			existing[recipe.ID] = struct{}{}
		}

		stubs := a.free.FilterByArea(ctx, req.Region)
		unseen := make([]catalog.Stub, 0, len(stubs))
		for _, stub := range stubs {
			if _, dup := existing[stub.ID]; !dup {
				unseen = append(unseen, stub)
			}
		}
		if len(unseen) == 0 {
			return nil
		}
		shuffleStubs(unseen)
		return a.free.LookupAll(ctx, unseen, req.PageSize*2)
	}

	needed := req.PageSize - len(pool)
	if needed > 10 {
		needed = 10
	}
	if needed <= 0 {
		return nil
	}
	return a.fetchRandom(ctx, needed)
}

func filterRegion(recipes []catalog.Recipe, region string) []catalog.Recipe {
	target := strings.ToLower(region)
	kept := make([]catalog.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if strings.ToLower(recipe.Area) == target {
			kept = append(kept, recipe)
		}
	}
	return kept
}

func shuffleStubs(stubs []catalog.Stub) {
	rand.Shuffle(len(stubs), func(i, j int) {
		stubs[i], stubs[j] = stubs[j], stubs[i]
	})
}
