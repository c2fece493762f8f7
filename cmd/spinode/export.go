package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/catalog"
	"github.com/spinode/spinode/internal/config"
	"github.com/spinode/spinode/internal/storage"
)

var (
	exportFormat  string
	exportClasses string
	exportOutput  string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: yaml or jsonl")
	exportCmd.Flags().StringVar(&exportClasses, "classes", "", "Export only the named classes (comma-separated)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the class catalog as a versioned YAML document or JSONL",
	Long: `Export classes from classes.jsonl in a format 'spinode import' accepts.

Examples:
  spinode export > catalog.yaml
  spinode export --classes l3extOut,bgpPeerEntry
  spinode export --format jsonl -o classes.jsonl`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "yaml" && exportFormat != "jsonl" {
		exitWithError(ExitError, "invalid format %q (valid: yaml, jsonl)", exportFormat)
	}

	repoRoot := mustFindRepository()
	classes, err := storage.ReadClasses(config.ClassesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading classes: %v", err)
	}
	if exportClasses != "" {
		classes, err = selectClasses(classes, strings.Split(exportClasses, ","))
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
	}

	if exportFormat == "jsonl" && exportOutput != "" {
		if err := storage.WriteClasses(exportOutput, classes); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		return nil
	}

	var out []byte
	if exportFormat == "yaml" {
		out, err = catalog.MarshalYAML(classes, "spinode export")
	} else {
		out, err = encodeJSONL(classes)
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if exportOutput != "" {
		if err := os.WriteFile(exportOutput, out, 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", exportOutput, err)
		}
		return nil
	}
	fmt.Print(string(out))
	return nil
}

// selectClasses returns the named classes in the order given.
func selectClasses(all []catalog.Class, names []string) ([]catalog.Class, error) {
	byName := make(map[string]catalog.Class, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}
	out := make([]catalog.Class, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown class: %s", name)
		}
		out = append(out, c)
	}
	return out, nil
}

func encodeJSONL(classes []catalog.Class) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	for _, c := range classes {
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", c.Name, err)
		}
	}
	return []byte(sb.String()), nil
}
