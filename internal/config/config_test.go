package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	raw := `input: scans/
dpi: 240
protection: false
detector: remote
remote_url: http://gpu:9000
margin: 12
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InputPath != "scans/" || cfg.DPI != 240 || cfg.Protection || cfg.Detector != "remote" {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.Margin != 12 {
		t.Errorf("Expected margin 12, got %d", cfg.Margin)
	}
	// Untouched fields keep their defaults.
	if cfg.OutputDir != "output" || cfg.Confidence != 0.1 {
		t.Errorf("Defaults lost: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) { c.InputPath = "doc.pdf" }, false},
		{"missing input", func(c *Config) {}, true},
		{"zero dpi", func(c *Config) { c.InputPath = "doc.pdf"; c.DPI = 0 }, true},
		{"confidence too high", func(c *Config) { c.InputPath = "doc.pdf"; c.Confidence = 1.5 }, true},
		{"negative margin", func(c *Config) { c.InputPath = "doc.pdf"; c.Margin = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
