package config

import (
	"fmt"
	"os"

	"nfl-projections-go/models"

	"gopkg.in/yaml.v3"
)

// scoringFile is the YAML layout of SCORING_FILE:
//
//	weights:
//	  receptions: 1.0
//	  passing_tds: 6
type scoringFile struct {
	Weights map[string]float64 `yaml:"weights"`
}

// LoadScoringWeights returns the default weights overridden by the YAML file
// at path. An empty path returns the defaults.
func LoadScoringWeights(path string) (models.ScoringWeights, error) {
	defaults := models.DefaultScoringWeights()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scoring file: %w", err)
	}

	var f scoringFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scoring file %s: %w", path, err)
	}

	return defaults.Merge(f.Weights), nil
}

// ScoringWeights loads the weights named by the pipeline configuration.
func (c *Config) ScoringWeights() (models.ScoringWeights, error) {
	return LoadScoringWeights(c.Pipeline.ScoringFile)
}
