package cli

import (
	"encoding/json"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"catlens/internal/detect"
	"catlens/internal/domain"
)

var (
	dedupThreshold    float64
	dedupSameCategory bool
	dedupJSON         bool
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Find duplicate item groups",
	Long: `Score all item pairs across the configured aspects, validate candidates
through the oracle when enabled, and cluster accepted matches into duplicate
groups with a master record and a redundancy cost.

Examples:
  catlens dedup
  catlens dedup --threshold 0.9 --same-category --json`,
	RunE: runDedup,
}

func init() {
	rootCmd.AddCommand(dedupCmd)
	dedupCmd.Flags().Float64Var(&dedupThreshold, "threshold", 0, "combined score threshold (default from config)")
	dedupCmd.Flags().BoolVar(&dedupSameCategory, "same-category", false, "only compare items within the same category")
	dedupCmd.Flags().BoolVar(&dedupJSON, "json", false, "output as JSON")
}

type dedupOutput struct {
	Edges           []domain.SimilarityEdge `json:"edges"`
	Groups          []domain.DuplicateGroup `json:"groups"`
	TotalRedundancy float64                 `json:"total_redundancy"`
}

func runDedup(cmd *cobra.Command, args []string) error {
	st, err := openCatalog()
	if err != nil {
		return err
	}
	defer st.Close()

	orc, err := newOracle()
	if err != nil {
		return fmt.Errorf("failed to create oracle: %w", err)
	}

	items, err := st.ListItems()
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	bar := progressbar.Default(int64(len(items)), "loading embeddings")
	embeddings := make(map[string]domain.EmbeddingSet, len(items))
	for _, item := range items {
		set, err := st.GetEmbeddingSet(item.ID)
		if err != nil {
			return fmt.Errorf("failed to load embeddings for %s: %w", item.ID, err)
		}
		if len(set) > 0 {
			embeddings[item.ID] = set
		}
		bar.Add(1)
	}

	threshold := cfg.Detect.Threshold
	if dedupThreshold > 0 {
		threshold = dedupThreshold
	}
	sameCategory := cfg.Detect.SameCategoryOnly || dedupSameCategory

	detector := detect.NewDetector(detectOptions(orc, threshold, sameCategory))
	edges, err := detector.FindDuplicates(cmd.Context(), items, embeddings)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	byID := make(map[string]domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	clusterer := detect.NewClusterer(nil, nil)
	groups := clusterer.BuildGroups(edges, byID)

	var total float64
	for _, g := range groups {
		total += g.RedundancyCost
	}

	if dedupJSON {
		data, _ := json.MarshalIndent(dedupOutput{
			Edges:           edges,
			Groups:          groups,
			TotalRedundancy: total,
		}, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(groups) == 0 {
		fmt.Println("No duplicate groups found.")
		return nil
	}

	fmt.Printf("Found %d duplicate groups from %d candidate edges\n\n", len(groups), len(edges))
	for _, g := range groups {
		fmt.Printf("--- Group %d (redundancy: %.2f) ---\n", g.GroupID, g.RedundancyCost)
		for _, id := range g.MemberIDs {
			marker := " "
			if id == g.MasterID {
				marker = "*"
			}
			item := byID[id]
			fmt.Printf(" %s %-16s %-40s %8.2f\n", marker, id, item.Name, item.Price)
		}
		fmt.Println()
	}
	fmt.Printf("Total redundant inventory value: %.2f\n", total)

	return nil
}
