package model

import (
	"fmt"
	"time"
)

// ----------------------------------------------------
// ================ Logging ================
// LogConfig holds logger settings, read from LOG_* variables
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"console"` // json | console
	Output     string `envconfig:"OUTPUT" default:"stderr"`  // stdout | stderr | file
	FilePath   string `envconfig:"FILE_PATH" default:"logs/studio.log"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"rfc3339"`
}

// ----------------------------------------------------
// ================ Storage ================
// StoreConfig selects and configures the persistence backends
type StoreConfig struct {
	DBPath     string `envconfig:"DB_PATH" default:"data/studio.db"`
	KVBackend  string `envconfig:"KV_BACKEND" default:"file"` // memory | file | redis
	KVPath     string `envconfig:"KV_PATH" default:"data/studio-kv.json"`
	QuotaBytes int    `envconfig:"QUOTA_BYTES" default:"5242880"`
	RedisURL   string `envconfig:"REDIS_URL"`
	KeyPrefix  string `envconfig:"KEY_PREFIX" default:"studio:"`
}

// ----------------------------------------------------
// ================ Pipeline ================
// PipelineConfig locates the generation pipeline service
type PipelineConfig struct {
	BaseURL string        `envconfig:"BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5m"`
}

// ----------------------------------------------------
// ================ Generation ================
// GenerationConfig holds the batch composition rules, read from studio.yaml
type GenerationConfig struct {
	MinBatch          int     `yaml:"min_batch"`
	MaxBatch          int     `yaml:"max_batch"`
	ContinuationRatio float64 `yaml:"continuation_ratio"`
	LikedSeedLimit    int     `yaml:"liked_seed_limit"`
	CatalogPath       string  `yaml:"catalog_path"`
}

// Pipeline limits on scene_count
const (
	MinSceneCount = 1
	MaxSceneCount = 10
)

// DefaultGenerationConfig returns the rules used when studio.yaml is absent
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MinBatch:          3,
		MaxBatch:          5,
		ContinuationRatio: 0.6,
		LikedSeedLimit:    5,
		CatalogPath:       "public/data/products.json",
	}
}

// Validate checks batch bounds and the continuation ratio
func (c GenerationConfig) Validate() error {
	if c.MinBatch < MinSceneCount || c.MaxBatch > MaxSceneCount || c.MinBatch > c.MaxBatch {
		return fmt.Errorf("batch range [%d, %d] must satisfy %d <= min <= max <= %d",
			c.MinBatch, c.MaxBatch, MinSceneCount, MaxSceneCount)
	}
	if c.ContinuationRatio < 0 || c.ContinuationRatio > 1 {
		return fmt.Errorf("continuation_ratio %.2f must be within [0, 1]", c.ContinuationRatio)
	}
	if c.LikedSeedLimit < 0 {
		return fmt.Errorf("liked_seed_limit must not be negative")
	}
	return nil
}
