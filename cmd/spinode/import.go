package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/catalog"
	"github.com/spinode/spinode/internal/config"
	"github.com/spinode/spinode/internal/storage"
)

var importDryRun bool

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import classes from catalog files",
	Long: `Import classes from YAML catalog documents or JSONL files.

Supported formats (by extension):
  .yaml, .yml  - catalog documents (version: 1, classes: [...])
  .jsonl       - one class per line

Classes are merged by name: new names are appended, existing ones replaced.

Usage:
  spinode import fabric.yaml
  spinode import a.yaml b.jsonl --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	Added    int      `json:"added"`
	Replaced int      `json:"replaced"`
	Classes  []string `json:"classes,omitempty"`
	DryRun   bool     `json:"dry_run,omitempty"`
}

// readCatalogFile loads classes from a file, choosing the format by extension.
func readCatalogFile(path string) ([]catalog.Class, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return catalog.ReadYAML(path)
	case ".jsonl":
		classes, err := storage.ReadClasses(path)
		if err != nil {
			return nil, err
		}
		for i := range classes {
			if err := classes[i].Validate(); err != nil {
				return nil, err
			}
		}
		return classes, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .yaml, .yml or .jsonl)", filepath.Ext(path))
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	var incoming []catalog.Class
	for _, path := range args {
		classes, err := readCatalogFile(path)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", path, err)
		}
		slog.Debug("read catalog file", "path", path, "classes", len(classes))
		incoming = append(incoming, classes...)
	}

	names := make([]string, len(incoming))
	for i, c := range incoming {
		names[i] = c.Name
	}

	if importDryRun {
		existing, err := storage.ReadClasses(config.ClassesPath(repoRoot))
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		_, added, replaced := catalog.Merge(existing, incoming)
		if humanOutput {
			fmt.Printf("Would import %d classes: %d new, %d replaced\n", len(incoming), added, replaced)
		} else {
			outputJSON(ImportResult{Added: added, Replaced: replaced, Classes: names, DryRun: true})
		}
		return nil
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	added, replaced, err := db.ImportClasses(config.ClassesPath(repoRoot), incoming)
	if err != nil {
		exitWithError(ExitDataError, "importing classes: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %d classes: %d new, %d replaced\n", len(incoming), added, replaced)
	} else {
		outputJSON(ImportResult{Added: added, Replaced: replaced, Classes: names})
	}
	return nil
}
