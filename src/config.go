package src

import (
	"fmt"

	"placement_studio/src/model"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig      model.LogConfig      `envconfig:"LOG"`
	StoreConfig    model.StoreConfig    `envconfig:"STORE"`
	PipelineConfig model.PipelineConfig `envconfig:"PIPELINE"`
	StudioConfig   string               `envconfig:"STUDIO_CONFIG" default:"studio.yaml"`
}

func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return &config, nil
}
