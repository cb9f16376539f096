package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration. It is read-only after LoadConfig.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	MealDB      MealDBConfig      `mapstructure:"mealdb"`
	Edamam      EdamamConfig      `mapstructure:"edamam"`
	Groq        GroqConfig        `mapstructure:"groq"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level"`
}

// AppConfig describes the application itself.
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// MealDBConfig configures the free recipe catalog. It needs no credentials.
type MealDBConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EdamamConfig configures the paid recipe search and nutrition catalog.
// Missing credentials disable the source; they never fail a request.
type EdamamConfig struct {
	AppID            string        `mapstructure:"app_id"`
	AppKey           string        `mapstructure:"app_key"`
	SearchBaseURL    string        `mapstructure:"search_base_url"`
	NutritionBaseURL string        `mapstructure:"nutrition_base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// GroqConfig configures the text-completion collaborator used for meal plans and
// prep/cook/servings estimation.
type GroqConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	PlanModel string        `mapstructure:"plan_model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RedisConfig configures the pantry document store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig configures the in-memory catalog response cache.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig configures request throttling.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// AggregationConfig holds the tuning knobs of the aggregation pipeline.
type AggregationConfig struct {
	DefaultPageSize   int      `mapstructure:"default_page_size"`
	FilterMultiplier  int      `mapstructure:"filter_multiplier"`
	ExcludeMultiplier int      `mapstructure:"exclude_multiplier"`
	BothMultiplier    int      `mapstructure:"both_multiplier"`
	MaxRandomCalls    int      `mapstructure:"max_random_calls"`
	PerIngredientCap  int      `mapstructure:"per_ingredient_cap"`
	SparseRegions     []string `mapstructure:"sparse_regions"`
}

// LoadConfig loads configuration from .env and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional in production environments.
		fmt.Println("Warning: .env file not found")
	}

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("edamam.app_id", "EDAMAM_APP_ID")
	viper.BindEnv("edamam.app_key", "EDAMAM_APP_KEY")
	viper.BindEnv("groq.api_key", "GROQ_API_KEY")
	viper.BindEnv("groq.model", "GROQ_MODEL")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Logger is not up yet, plain print.
	fmt.Println("Loading configuration",
		"edamam_app_id:", maskAPIKey(viper.GetString("edamam.app_id")),
		"groq_api_key:", maskAPIKey(viper.GetString("groq.api_key")))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey hides all but the first and last four characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "chefmind")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("mealdb.base_url", "https://www.themealdb.com/api/json/v1/1")
	viper.SetDefault("mealdb.timeout", "5s")

	viper.SetDefault("edamam.search_base_url", "https://api.edamam.com/api/recipes/v2")
	viper.SetDefault("edamam.nutrition_base_url", "https://api.edamam.com/api/nutrition-details")
	viper.SetDefault("edamam.timeout", "5s")

	viper.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("groq.model", "llama-3.3-70b-versatile")
	viper.SetDefault("groq.plan_model", "llama-3.1-8b-instant")
	viper.SetDefault("groq.max_tokens", 1500)
	viper.SetDefault("groq.timeout", "30s")

	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("aggregation.default_page_size", 12)
	viper.SetDefault("aggregation.filter_multiplier", 3)
	viper.SetDefault("aggregation.exclude_multiplier", 3)
	viper.SetDefault("aggregation.both_multiplier", 5)
	viper.SetDefault("aggregation.max_random_calls", 12)
	viper.SetDefault("aggregation.per_ingredient_cap", 10)
	viper.SetDefault("aggregation.sparse_regions", []string{"indian"})

	viper.SetDefault("dedup_window", "1s")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.MealDB.BaseURL == "" {
		return fmt.Errorf("mealdb base url is required")
	}

	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Aggregation.DefaultPageSize <= 0 {
		return fmt.Errorf("invalid default page size")
	}
	if config.Aggregation.FilterMultiplier <= 0 ||
		config.Aggregation.ExcludeMultiplier <= 0 ||
		config.Aggregation.BothMultiplier <= 0 {
		return fmt.Errorf("invalid over-fetch multipliers")
	}

	return nil
}
