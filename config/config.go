package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the catlens tool.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Detect    DetectConfig    `yaml:"detect"`
	Recommend RecommendConfig `yaml:"recommend"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CatalogConfig holds catalog storage configuration.
type CatalogConfig struct {
	DBFile string `yaml:"db_file"`
}

// EmbeddingConfig holds embedding generation configuration.
type EmbeddingConfig struct {
	Provider  string   `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string   `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string   `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string   `yaml:"base_url"`
	Dimension int      `yaml:"dimension"`
	BatchSize int      `yaml:"batch_size"`
	Aspects   []string `yaml:"aspects"` // embedding channels to generate
}

// OracleConfig holds the generative validation/scoring configuration.
type OracleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"` // "openai", "ollama"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	// Strict drops candidates when an oracle call fails instead of falling
	// back to threshold-only acceptance.
	Strict bool `yaml:"strict"`
}

// DetectConfig holds duplicate detection configuration.
type DetectConfig struct {
	Threshold        float64            `yaml:"threshold"`
	Weights          map[string]float64 `yaml:"weights"`   // aspect -> blend weight
	Overrides        map[string]float64 `yaml:"overrides"` // aspect -> single-signal acceptance bound
	SameCategoryOnly bool               `yaml:"same_category_only"`
	Workers          int                `yaml:"workers"`
	BatchSize        int                `yaml:"batch_size"`
}

// RecommendConfig holds recommendation ranking configuration.
type RecommendConfig struct {
	TopK               int     `yaml:"top_k"`
	PriceDelta         float64 `yaml:"price_delta"`
	SubstituteFloor    float64 `yaml:"substitute_floor"`
	RatingCutoff       float64 `yaml:"rating_cutoff"`
	CrossSellLow       float64 `yaml:"cross_sell_low"`
	CrossSellHigh      float64 `yaml:"cross_sell_high"`
	CrossCategoryBonus float64 `yaml:"cross_category_bonus"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			DBFile: "catalog.db",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
			Aspects:   []string{"title", "attributes", "full"},
		},
		Oracle: OracleConfig{
			Enabled:   false,
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Detect: DetectConfig{
			Threshold: 0.85,
			Weights: map[string]float64{
				"title": 0.6,
				"full":  0.4,
			},
			Overrides: map[string]float64{
				"title": 0.95,
			},
			SameCategoryOnly: false,
			Workers:          4,
			BatchSize:        500,
		},
		Recommend: RecommendConfig{
			TopK:               5,
			PriceDelta:         0.3,
			SubstituteFloor:    0.5,
			RatingCutoff:       6.0,
			CrossSellLow:       0.4,
			CrossSellHigh:      0.8,
			CrossCategoryBonus: 0.1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for catlens.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "catlens.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".catlens", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DBPath returns the path to the catalog database.
func DBPath(dir string, cfg *Config) string {
	return filepath.Join(dir, ".catlens", cfg.Catalog.DBFile)
}

// EnsureDir ensures the .catlens directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".catlens"), 0755)
}
