package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"placement_studio/src/model"
)

// YAMLConfig represents the structure of studio.yaml
type YAMLConfig struct {
	Generation model.GenerationConfig `yaml:"generation"`
}

// LoadConfig loads generation rules from studio.yaml.
// A missing file yields the defaults; keys absent from the file keep their default values.
func LoadConfig(filepath string) (model.GenerationConfig, error) {
	config := YAMLConfig{Generation: model.DefaultGenerationConfig()}

	data, err := os.ReadFile(filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Generation, nil
	}
	if err != nil {
		return model.GenerationConfig{}, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return model.GenerationConfig{}, fmt.Errorf("error parsing YAML: %w", err)
	}
	if err := config.Generation.Validate(); err != nil {
		return model.GenerationConfig{}, fmt.Errorf("invalid generation rules in %s: %w", filepath, err)
	}

	return config.Generation, nil
}
