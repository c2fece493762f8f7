package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/storage"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results to return (default from config)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search classes by keyword",
	Long: `Full-text search over class names, labels, descriptions and property names.

Every word is matched as a prefix and all words must match.

Examples:
  spinode search l3ext
  spinode search "bgp peer"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

const searchDescrMaxLen = 60

func runSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	db := mustOpenSyncedDatabase(repoRoot)
	defer db.Close()

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.EffectiveSearchLimit()
	}

	hits, err := db.SearchClasses(strings.Join(args, " "), limit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(hits) == 0 {
			fmt.Println("No classes found")
			return nil
		}
		for _, h := range hits {
			fmt.Printf("%-24s %-20s %s\n", h.Name, h.Label, truncate(h.Descr, searchDescrMaxLen))
		}
		return nil
	}
	if hits == nil {
		hits = []storage.ClassSummary{}
	}
	outputJSON(hits)
	return nil
}
