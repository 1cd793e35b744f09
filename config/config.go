package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HarvestConfig represents the harvest limits and filter criteria
type HarvestConfig struct {
	Harvest struct {
		MaxBusinesses      int `yaml:"max_businesses"`
		ReviewsPerBusiness int `yaml:"reviews_per_business"`
	} `yaml:"harvest"`
	Filters struct {
		MinStars      float64 `yaml:"min_stars"`
		MinTextLength int     `yaml:"min_text_length"`
	} `yaml:"filters"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*HarvestConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg HarvestConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *HarvestConfig {
	cfg := &HarvestConfig{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *HarvestConfig) applyDefaults() {
	if cfg.Harvest.MaxBusinesses <= 0 {
		cfg.Harvest.MaxBusinesses = 5
	}
	if cfg.Harvest.ReviewsPerBusiness <= 0 {
		cfg.Harvest.ReviewsPerBusiness = 20
	}
}
