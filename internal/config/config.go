package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ScoringConfig holds the relevance engine's tunable constants.
// The thresholds and weights are hand-tuned, not load-bearing
// precision; override them per deployment rather than editing code.
type ScoringConfig struct {
	// Minimum token length kept by the tokenizer; shorter words act
	// as a coarse stop-word filter
	MinTokenLen int `yaml:"min_token_len"`
	// GenericThreshold gates same-kind relevance suggestions
	GenericThreshold int `yaml:"generic_threshold"`
	// AugmentedThreshold gates AI-augmented anchor-text suggestions
	AugmentedThreshold int `yaml:"augmented_threshold"`
	// DefaultLimit caps a suggestion list when the caller passes none
	DefaultLimit int `yaml:"default_limit"`

	// Combined ranking weights for the augmented variant
	RelevanceWeight float64 `yaml:"relevance_weight"`
	SemanticWeight  float64 `yaml:"semantic_weight"`
	IntentWeight    float64 `yaml:"intent_weight"`
	SeoWeight       float64 `yaml:"seo_weight"`
}

// RedisConfig connection settings for the optional Redis cache backend
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Config is the process configuration
type Config struct {
	Env     string        `yaml:"env"`
	Scoring ScoringConfig `yaml:"scoring"`
	Redis   RedisConfig   `yaml:"redis"`

	// AugmentTimeout bounds external augmentation calls
	AugmentTimeout time.Duration `yaml:"augment_timeout"`
}

// DefaultScoring returns the shipped scoring constants
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		MinTokenLen:        4,
		GenericThreshold:   50,
		AugmentedThreshold: 75,
		DefaultLimit:       5,
		RelevanceWeight:    0.60,
		SemanticWeight:     0.15,
		IntentWeight:       0.15,
		SeoWeight:          0.10,
	}
}

// LoadDotEnv loads .env files with priority: .env.local > .env
// godotenv.Load does NOT overwrite already-set env vars,
// so OS env vars always win, .env.local wins over .env.
// Returns list of files actually loaded.
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Load builds the configuration from defaults, an optional YAML file
// named by QUESTLINE_CONFIG, and environment variables, in that
// order of precedence (env wins).
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := &Config{
		Env:            "development",
		Scoring:        DefaultScoring(),
		AugmentTimeout: 15 * time.Second,
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
	}

	if path := os.Getenv("QUESTLINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	if v := os.Getenv("SCORING_GENERIC_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.GenericThreshold = n
		}
	}
	if v := os.Getenv("SCORING_AUGMENTED_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.AugmentedThreshold = n
		}
	}
	if v := os.Getenv("AUGMENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AugmentTimeout = d
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = n
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	return cfg, nil
}
