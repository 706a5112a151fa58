package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"catlens/internal/domain"
)

var loadCmd = &cobra.Command{
	Use:   "load <pattern>...",
	Short: "Import catalog items from JSON files",
	Long: `Import items into the catalog database from JSON files matching the given
glob patterns. Each file holds a JSON array of items.

Examples:
  catlens load products.json
  catlens load "data/**/*.json" extra/items.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	st, err := createCatalog()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer st.Close()

	var files []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched")
	}

	var loaded, skipped int
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		var items []domain.Item
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}

		for _, item := range items {
			if item.ID == "" {
				logger.Warn().Str("file", file).Str("name", item.Name).Msg("skipping item without id")
				skipped++
				continue
			}
			if err := st.PutItem(item); err != nil {
				return fmt.Errorf("failed to store item %s: %w", item.ID, err)
			}
			loaded++
		}
	}

	fmt.Printf("Loaded %d items from %d files", loaded, len(files))
	if skipped > 0 {
		fmt.Printf(" (%d skipped)", skipped)
	}
	fmt.Println()

	return nil
}
