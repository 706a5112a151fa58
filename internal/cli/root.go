package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"catlens/config"
	"catlens/internal/adapter/embedding"
	"catlens/internal/adapter/oracle"
	"catlens/internal/adapter/store"
	"catlens/internal/detect"
	"catlens/internal/domain"
	"catlens/internal/port"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "catlens",
	Short: "Catalog similarity engine - search, deduplicate, and recommend products",
	Long: `catlens turns a product catalog plus precomputed embeddings into ranked
semantic search results, duplicate groups with an estimated redundancy cost,
and substitute / cross-sell recommendations.

Example usage:
  catlens load "data/**/*.json"       # Import catalog items
  catlens embed                       # Generate embeddings per aspect
  catlens search -q "cordless drill"  # Semantic search
  catlens dedup                       # Find duplicate groups
  catlens recommend --item SKU-001    # Rank substitutes`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./catlens.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

// openCatalog opens the catalog database, requiring it to exist.
func openCatalog() (*store.BoltStore, error) {
	dbPath := config.DBPath(rootDir, cfg)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no catalog found. Run 'catlens load' first")
	}
	return store.NewBoltStore(dbPath)
}

// createCatalog opens the catalog database, creating it if needed.
func createCatalog() (*store.BoltStore, error) {
	if err := config.EnsureDir(rootDir); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return store.NewBoltStore(config.DBPath(rootDir, cfg))
}

func newEmbedder() (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
		}
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newOracle returns nil when the oracle is disabled; callers treat a nil
// oracle as "accept on thresholds alone".
func newOracle() (port.Oracle, error) {
	if !cfg.Oracle.Enabled {
		return nil, nil
	}
	switch cfg.Oracle.Provider {
	case "openai":
		if cfg.Oracle.BaseURL != "" {
			return oracle.NewOpenAICompatibleOracle(cfg.Oracle.APIKeyEnv, cfg.Oracle.Model, cfg.Oracle.BaseURL)
		}
		return oracle.NewOpenAIOracle(cfg.Oracle.APIKeyEnv, cfg.Oracle.Model)
	case "ollama":
		return oracle.NewOllamaOracle(cfg.Oracle.Model, cfg.Oracle.BaseURL)
	default:
		return nil, fmt.Errorf("unknown oracle provider: %s", cfg.Oracle.Provider)
	}
}

// detectOptions translates the config into detector options, with weights
// and overrides in a stable order.
func detectOptions(orc port.Oracle, threshold float64, sameCategory bool) detect.Options {
	weights := make([]domain.AspectWeight, 0, len(cfg.Detect.Weights))
	for aspect, weight := range cfg.Detect.Weights {
		weights = append(weights, domain.AspectWeight{Aspect: domain.Aspect(aspect), Weight: weight})
	}
	sort.Slice(weights, func(i, j int) bool { return weights[i].Aspect < weights[j].Aspect })

	overrides := make([]detect.AspectOverride, 0, len(cfg.Detect.Overrides))
	for aspect, min := range cfg.Detect.Overrides {
		overrides = append(overrides, detect.AspectOverride{Aspect: domain.Aspect(aspect), MinScore: min})
	}
	sort.Slice(overrides, func(i, j int) bool { return overrides[i].Aspect < overrides[j].Aspect })

	return detect.Options{
		Weights: weights,
		Policy: detect.Policy{
			CombinedThreshold: threshold,
			Overrides:         overrides,
		},
		SameCategoryOnly: sameCategory,
		Oracle:           orc,
		StrictValidation: cfg.Oracle.Strict,
		Workers:          cfg.Detect.Workers,
		BatchSize:        cfg.Detect.BatchSize,
		Logger:           &logger,
	}
}
