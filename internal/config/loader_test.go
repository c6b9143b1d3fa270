package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement_studio/src/model"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGenerationConfig(), cfg)
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	cfg, err := LoadConfig(writeYAML(t, "generation:\n  max_batch: 8\n  continuation_ratio: 0.25\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MinBatch)
	assert.Equal(t, 8, cfg.MaxBatch)
	assert.InDelta(t, 0.25, cfg.ContinuationRatio, 1e-9)
	assert.Equal(t, 5, cfg.LikedSeedLimit)
	assert.Equal(t, "public/data/products.json", cfg.CatalogPath)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"min above max", "generation:\n  min_batch: 6\n  max_batch: 4\n"},
		{"max above pipeline limit", "generation:\n  max_batch: 11\n"},
		{"zero min", "generation:\n  min_batch: 0\n"},
		{"ratio out of range", "generation:\n  continuation_ratio: 1.5\n"},
		{"malformed", "generation: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeYAML(t, tt.body))
			assert.Error(t, err)
		})
	}
}
