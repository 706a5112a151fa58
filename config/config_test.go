package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Detect.Threshold != 0.85 {
		t.Errorf("expected Threshold=0.85, got %f", cfg.Detect.Threshold)
	}
	if cfg.Detect.Overrides["title"] != 0.95 {
		t.Errorf("expected title override=0.95, got %f", cfg.Detect.Overrides["title"])
	}
	if cfg.Recommend.RatingCutoff != 6.0 {
		t.Errorf("expected RatingCutoff=6.0, got %f", cfg.Recommend.RatingCutoff)
	}
	if cfg.Recommend.CrossSellLow != 0.4 || cfg.Recommend.CrossSellHigh != 0.8 {
		t.Errorf("expected cross-sell band [0.4, 0.8], got [%f, %f]",
			cfg.Recommend.CrossSellLow, cfg.Recommend.CrossSellHigh)
	}
	if cfg.Embedding.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Embedding.BatchSize)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "catlens.yaml")

	content := `
detect:
  threshold: 0.9
  same_category_only: true
recommend:
  top_k: 10
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Detect.Threshold != 0.9 {
		t.Errorf("expected Threshold=0.9, got %f", cfg.Detect.Threshold)
	}
	if !cfg.Detect.SameCategoryOnly {
		t.Error("expected SameCategoryOnly=true")
	}
	if cfg.Recommend.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Recommend.TopK)
	}
	// Untouched areas keep their defaults.
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %s", cfg.Embedding.Model)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "catlens.yaml")

	cfg := DefaultConfig()
	cfg.Detect.Threshold = 0.77
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Detect.Threshold != 0.77 {
		t.Errorf("expected Threshold=0.77, got %f", loaded.Detect.Threshold)
	}
}
