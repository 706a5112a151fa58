package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"catlens/internal/domain"
	"catlens/internal/search"
)

var (
	searchQuery  string
	searchAspect string
	searchTopK   int
	searchMinSim float64
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the catalog semantically",
	Long: `Embed the query text and rank catalog items by cosine similarity for
one aspect.

Examples:
  catlens search -q "cordless drill"
  catlens search -q "running shoes" --aspect title -k 10 --min-similarity 0.5`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().StringVar(&searchAspect, "aspect", string(domain.AspectFull), "embedding aspect to search")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 10, "number of results")
	searchCmd.Flags().Float64Var(&searchMinSim, "min-similarity", 0.0, "minimum similarity")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

type searchResultOutput struct {
	ItemID     string  `json:"item_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Price      float64 `json:"price"`
	Similarity float64 `json:"similarity"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	st, err := openCatalog()
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := newEmbedder()
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	vectors, err := embedder.Embed(cmd.Context(), []string{searchQuery})
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embedding returned empty result")
	}

	searcher := search.NewSearcher(st)
	results, err := searcher.Search(vectors[0], domain.Aspect(searchAspect), searchTopK, searchMinSim)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	outputs := make([]searchResultOutput, 0, len(results))
	for _, r := range results {
		item, err := st.GetItem(r.ItemID)
		if err != nil {
			continue
		}
		outputs = append(outputs, searchResultOutput{
			ItemID:     r.ItemID,
			Name:       item.Name,
			Category:   item.Category,
			Price:      item.Price,
			Similarity: r.Similarity,
		})
	}

	if searchJSON {
		data, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(outputs) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(outputs), searchQuery)
	for i, r := range outputs {
		fmt.Printf("%2d. %-40s %-16s %8.2f  (similarity: %.3f)\n",
			i+1, r.Name, r.Category, r.Price, r.Similarity)
	}

	return nil
}
