package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"catlens/internal/adapter/embedding"
	"catlens/internal/domain"
)

var embedAspects []string

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate item embeddings per aspect",
	Long: `Generate embeddings for every catalog item, one vector per configured
aspect. Items whose fields cannot produce text for an aspect are skipped.

Examples:
  catlens embed
  catlens embed --aspects title,full`,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	embedCmd.Flags().StringSliceVar(&embedAspects, "aspects", nil, "aspects to embed (default from config)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	st, err := openCatalog()
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := newEmbedder()
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	items, err := st.ListItems()
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("Catalog is empty. Run 'catlens load' first.")
		return nil
	}

	aspects := embedAspects
	if len(aspects) == 0 {
		aspects = cfg.Embedding.Aspects
	}

	batchSize := cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	ctx := cmd.Context()
	for _, name := range aspects {
		aspect := domain.Aspect(name)

		ids := make([]string, 0, len(items))
		texts := make([]string, 0, len(items))
		for _, item := range items {
			if text, ok := embedding.AspectText(item, aspect); ok {
				ids = append(ids, item.ID)
				texts = append(texts, text)
			}
		}
		if len(ids) == 0 {
			logger.Warn().Str("aspect", name).Msg("no items produce text for aspect")
			continue
		}

		bar := progressbar.Default(int64(len(ids)), fmt.Sprintf("embedding %s", name))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for start := 0; start < len(ids); start += batchSize {
			end := start + batchSize
			if end > len(ids) {
				end = len(ids)
			}
			start, end := start, end
			g.Go(func() error {
				vectors, err := embedder.Embed(gctx, texts[start:end])
				if err != nil {
					return fmt.Errorf("embedding batch failed: %w", err)
				}
				for i, vector := range vectors {
					if err := st.PutEmbedding(ids[start+i], aspect, vector); err != nil {
						return fmt.Errorf("failed to store embedding for %s: %w", ids[start+i], err)
					}
				}
				bar.Add(end - start)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	fmt.Printf("Embedded %d items with model %s\n", len(items), embedder.ModelName())
	return nil
}
