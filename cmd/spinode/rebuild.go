package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from classes.jsonl",
	Long: `Rebuild the SQLite catalog tables from the JSONL source file.

Use this after pulling changes from git or if the database becomes corrupted.
Audit records and users are kept.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status       string `json:"status"`
	Classes      int    `json:"classes"`
	DroppedProps int64  `json:"dropped_duplicate_props"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	n, err := db.RebuildFromJSONL(config.ClassesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding catalog: %v", err)
	}
	dropped, err := db.DeleteDuplicateProps()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d classes\n", n)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Classes: n, DroppedProps: dropped})
	}
	return nil
}
