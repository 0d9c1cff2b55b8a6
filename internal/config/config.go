// Package config holds the runtime options for a cleanup run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives a document cleanup run. Zero values are filled in by
// Default; flags may override any field.
type Config struct {
	InputPath  string `yaml:"input"`
	OutputDir  string `yaml:"output"`
	ZonesFile  string `yaml:"zones,omitempty"`
	DPI        int    `yaml:"dpi"`
	Workers    int    `yaml:"workers"` // 0 = size from system resources
	Protection bool   `yaml:"protection"`
	Detector   string `yaml:"detector"` // contrast | remote
	RemoteURL  string `yaml:"remote_url,omitempty"`
	// Confidence below which detections are ignored.
	Confidence float64 `yaml:"confidence"`
	// Margin buffers protected regions before subtraction (pixels).
	Margin     int  `yaml:"margin"`
	ProtectInk bool `yaml:"protect_ink"` // preserve red/blue stamp ink
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		OutputDir:  "output",
		DPI:        120,
		Protection: true,
		Detector:   "contrast",
		Confidence: 0.1,
		Margin:     5,
		ProtectInk: true,
	}
}

// Load reads a yaml config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks fields that would make a run meaningless.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %.2f outside [0,1]", c.Confidence)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", c.Margin)
	}
	return nil
}
