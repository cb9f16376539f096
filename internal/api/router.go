package api

import (
	"context"
	"net/http"
	"time"

	"chefmind/internal/api/handlers/health"
	pantryHandler "chefmind/internal/api/handlers/pantry"
	recipesHandler "chefmind/internal/api/handlers/recipes"
	"chefmind/internal/api/middleware"
	"chefmind/internal/core/aggregate"
	"chefmind/internal/core/ai/groq"
	"chefmind/internal/core/catalog"
	pantryStore "chefmind/internal/core/pantry"
	recipeService "chefmind/internal/core/recipe"
	"chefmind/internal/infrastructure/cache"
	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Aggregation fans out many upstream calls; give requests room.
	timeoutDuration = 60 * time.Second
	// Request body limit (1MB). Inputs are small JSON documents.
	maxBodySize = 1 << 20
)

// SetupRouter wires middleware, services and routes into a gin engine.
func SetupRouter(cfg *config.Config, cacheManager *cache.Manager, store *pantryStore.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("edamam_enabled", cfg.Edamam.AppID != ""),
		zap.Bool("groq_enabled", cfg.Groq.APIKey != ""),
		zap.Duration("timeout", timeoutDuration),
	)

	mealDB := catalog.NewMealDBClient(cfg, cacheManager)
	edamam := catalog.NewEdamamClient(cfg)
	ai := groq.NewClient(cfg)

	aggregator := aggregate.NewAggregator(mealDB, edamam, cfg.Aggregation)
	detailSvc := recipeService.NewDetailService(mealDB, ai)
	nutritionSvc := recipeService.NewNutritionService(edamam)
	mealPlanSvc := recipeService.NewMealPlanService(ai)

	recipes := recipesHandler.NewHandler(aggregator, detailSvc, nutritionSvc, mealPlanSvc)
	pantry := pantryHandler.NewHandler(store)

	// Per-request timeout plus context values for the health endpoint.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("cache_manager", cacheManager)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		api.POST("/recipes", recipes.HandleDiscover)
		api.POST("/recipes/detail", recipes.HandleDetail)
		api.POST("/nutrition", recipes.HandleNutrition)

		// Model-backed generation is the slowest and most expensive route;
		// shield it from double submits.
		api.POST("/mealplan", middleware.Deduplication(cfg), recipes.HandleMealPlan)

		pantryGroup := api.Group("/pantry")
		{
			pantryGroup.GET("", pantry.HandleList)
			pantryGroup.POST("", pantry.HandleAdd)
			pantryGroup.PUT("", pantry.HandleUpdate)
			pantryGroup.DELETE("", pantry.HandleDelete)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
