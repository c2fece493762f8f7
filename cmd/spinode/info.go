package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/config"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show repository files, catalog size and sync status",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

// InfoResult is the response for the info command.
type InfoResult struct {
	Root          string `json:"root"`
	ClassesPath   string `json:"classes_path"`
	ClassesSize   int64  `json:"classes_size"`
	DBPath        string `json:"db_path"`
	DBSize        int64  `json:"db_size"`
	SchemaVersion int    `json:"schema_version"`
	Classes       int    `json:"classes"`
	LastSync      string `json:"last_sync,omitempty"`
	InSync        bool   `json:"in_sync"`
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func runInfo(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	classesPath := config.ClassesPath(repoRoot)
	info := InfoResult{
		Root:        repoRoot,
		ClassesPath: classesPath,
		ClassesSize: fileSize(classesPath),
		DBPath:      config.DBPath(repoRoot),
		DBSize:      fileSize(config.DBPath(repoRoot)),
	}

	var err error
	if info.SchemaVersion, err = db.SchemaVersion(); err != nil {
		exitWithError(ExitError, "reading schema version: %v", err)
	}
	if info.Classes, err = db.CountClasses(); err != nil {
		exitWithError(ExitError, "counting classes: %v", err)
	}
	last, err := db.LastSync()
	if err != nil {
		exitWithError(ExitError, "reading sync time: %v", err)
	}
	if !last.IsZero() {
		info.LastSync = last.Format(time.RFC3339)
	}
	stale, err := db.NeedsSync(classesPath)
	if err != nil {
		exitWithError(ExitError, "checking sync status: %v", err)
	}
	info.InSync = !stale

	if !humanOutput {
		outputJSON(info)
		return nil
	}

	fmt.Printf("Repository: %s\n\n", info.Root)
	fmt.Println("Files:")
	fmt.Printf("  JSONL: %s (%d bytes)\n", info.ClassesPath, info.ClassesSize)
	fmt.Printf("  DB:    %s (%d bytes)\n", info.DBPath, info.DBSize)
	fmt.Printf("\nSchema version: %d\n", info.SchemaVersion)
	fmt.Printf("Classes: %d\n", info.Classes)
	if info.LastSync != "" {
		fmt.Printf("Last sync: %s\n", info.LastSync)
	}
	if info.InSync {
		fmt.Println("Sync status: in sync")
	} else {
		fmt.Println("Sync status: out of sync (run 'spinode rebuild')")
	}
	return nil
}
