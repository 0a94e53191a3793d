package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the pipeline, inference
// engine, and HTTP server. Values come from an optional YAML file and
// may be overridden by environment variables.
type Config struct {
	Blob    BlobConfig    `yaml:"blob"`
	Models  ModelsConfig  `yaml:"models"`
	Feed    FeedConfig    `yaml:"feed"`
	Prices  PricesConfig  `yaml:"prices"`
	History HistoryConfig `yaml:"history"`
	HTTP    HTTPConfig    `yaml:"http"`
	Redis   RedisConfig   `yaml:"redis"`
	DB      DBConfig      `yaml:"db"`
}

// BlobConfig locates the artifact store.
type BlobConfig struct {
	BaseDir       string `yaml:"base_dir"`
	ProcessedPath string `yaml:"processed_path"`
	ModelsPath    string `yaml:"models_path"`
}

// ModelsConfig identifies the trained bundle and its local cache.
type ModelsConfig struct {
	RunID    string `yaml:"run_id"`
	CacheDir string `yaml:"cache_dir"`
	TopK     int    `yaml:"top_k"`
}

// FeedConfig controls the raw GKG feed client.
type FeedConfig struct {
	BaseURL        string  `yaml:"base_url"`
	RequestTimeout int     `yaml:"request_timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	MaxThemes      int     `yaml:"max_themes"`
}

// PricesConfig controls the commodity price client.
type PricesConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
}

// HistoryConfig bounds the prediction history log.
type HistoryConfig struct {
	Window int `yaml:"window"`
}

// HTTPConfig holds server bind settings.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig enables the optional day-aggregate cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLHours int    `yaml:"ttl_hours"`
}

// DBConfig enables the optional Postgres history mirror when DSN is set.
type DBConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Blob: BlobConfig{
			BaseDir:       "artifacts",
			ProcessedPath: "processed_data",
			ModelsPath:    "trained_models",
		},
		Models: ModelsConfig{
			RunID:    "run_default",
			CacheDir: os.TempDir() + "/crudecast_model_cache",
			TopK:     15,
		},
		Feed: FeedConfig{
			BaseURL:        "http://data.gdeltproject.org/gdeltv2",
			RequestTimeout: 30,
			RatePerSecond:  4,
			MaxThemes:      10,
		},
		Prices: PricesConfig{
			BaseURL:        "https://www.alphavantage.co/query",
			RequestTimeout: 30,
		},
		History: HistoryConfig{Window: 120},
		HTTP:    HTTPConfig{Host: "0.0.0.0", Port: 8080},
		Redis:   RedisConfig{TTLHours: 48},
	}
}

// Load reads the YAML file at path (when non-empty), then applies
// environment overrides on top of defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BLOB_BASE_DIR"); v != "" {
		c.Blob.BaseDir = v
	}
	if v := os.Getenv("MODEL_RUN_ID"); v != "" {
		c.Models.RunID = v
	}
	if v := os.Getenv("MODEL_CACHE_DIR"); v != "" {
		c.Models.CacheDir = v
	}
	if v := os.Getenv("TOP_COUNTRIES_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Models.TopK = n
		}
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Prices.APIKey = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = p
		}
	}
	if v := os.Getenv("HTTP_HOST"); v != "" {
		c.HTTP.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DB.DSN = v
	}
}

// Validate rejects configurations that cannot produce a working process.
func (c *Config) Validate() error {
	if c.Models.TopK <= 0 {
		return fmt.Errorf("models.top_k must be positive, got %d", c.Models.TopK)
	}
	if c.History.Window <= 0 {
		return fmt.Errorf("history.window must be positive, got %d", c.History.Window)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	return nil
}
