package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/catalog"
	"github.com/spinode/spinode/internal/config"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in demo classes",
	Long: `Merge the demo classes (vlanCktEp, l3extOut, bgpPeerEntry) into the
catalog. Existing classes with the same names are replaced.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	added, replaced, err := db.ImportClasses(config.ClassesPath(repoRoot), catalog.Demo())
	if err != nil {
		exitWithError(ExitDataError, "seeding demo classes: %v", err)
	}

	if humanOutput {
		fmt.Printf("Seeded demo catalog: %d added, %d replaced\n", added, replaced)
	} else {
		outputJSON(ImportResult{Added: added, Replaced: replaced})
	}
	return nil
}
