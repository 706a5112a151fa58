package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"catlens/internal/domain"
	"catlens/internal/recommend"
)

var (
	recommendItem string
	recommendMode string
	recommendTopK int
	recommendJSON bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank substitute or cross-sell candidates for an item",
	Long: `Find and rank recommendations for a target item. Substitutes stay in the
target's category and price band; cross-sell candidates sit in a moderate
similarity band and favor other categories.

Examples:
  catlens recommend --item SKU-001
  catlens recommend --item SKU-001 --mode cross-sell -k 3`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVar(&recommendItem, "item", "", "target item ID (required)")
	recommendCmd.Flags().StringVar(&recommendMode, "mode", string(domain.ModeSubstitutes), "substitutes or cross-sell")
	recommendCmd.Flags().IntVarP(&recommendTopK, "top-k", "k", 0, "number of results (default from config)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output as JSON")
	recommendCmd.MarkFlagRequired("item")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	st, err := openCatalog()
	if err != nil {
		return err
	}
	defer st.Close()

	orc, err := newOracle()
	if err != nil {
		return fmt.Errorf("failed to create oracle: %w", err)
	}

	opts := recommend.Options{
		PriceDelta:         cfg.Recommend.PriceDelta,
		SubstituteFloor:    cfg.Recommend.SubstituteFloor,
		RatingCutoff:       cfg.Recommend.RatingCutoff,
		CrossSellLow:       cfg.Recommend.CrossSellLow,
		CrossSellHigh:      cfg.Recommend.CrossSellHigh,
		CrossCategoryBonus: cfg.Recommend.CrossCategoryBonus,
		Logger:             &logger,
	}
	ranker := recommend.NewRanker(st, orc, opts)

	topK := cfg.Recommend.TopK
	if recommendTopK > 0 {
		topK = recommendTopK
	}

	recs, err := ranker.Rank(cmd.Context(), recommendItem, domain.Mode(recommendMode), topK)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	if recommendJSON {
		data, _ := json.MarshalIndent(recs, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(recs) == 0 {
		fmt.Println("No recommendations found.")
		return nil
	}

	fmt.Printf("Top %s for %s:\n\n", recommendMode, recommendItem)
	for i, rec := range recs {
		item, err := st.GetItem(rec.ItemID)
		if err != nil {
			continue
		}
		fmt.Printf("%2d. %-40s score: %.2f  similarity: %.3f\n", i+1, item.Name, rec.Score, rec.Similarity)
		if rec.Rationale != "" {
			fmt.Printf("    %s\n", rec.Rationale)
		}
	}

	return nil
}
