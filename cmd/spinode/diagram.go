package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/diagram"
)

var (
	diagramFormat string
	diagramLayout string
	diagramOutput string
)

func init() {
	diagramCmd.Flags().StringVarP(&diagramFormat, "format", "f", "", "Output format: mermaid, ascii or html (default from config)")
	diagramCmd.Flags().StringVar(&diagramLayout, "layout", "force", "HTML layout: force, circle or grid")
	diagramCmd.Flags().StringVarP(&diagramOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(diagramCmd)
}

var diagramCmd = &cobra.Command{
	Use:   "diagram <class>",
	Short: "Draw a class and the classes it relates to",
	Long: `Draw a class's relations as a Mermaid flowchart, an ASCII tree or a
self-contained HTML page (Cytoscape.js).

Diagram text is printed as-is; --human does not change it.

Examples:
  spinode diagram l3extOut
  spinode diagram l3extOut --format ascii
  spinode diagram l3extOut --format html -o l3extOut.html`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagram,
}

func runDiagram(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	format := diagramFormat
	if format == "" {
		format = cfg.EffectiveDiagramFormat()
	}
	if !diagram.IsValidFormat(format) {
		exitWithError(ExitError, "invalid format %q (valid: %v)", format, diagram.ValidFormats)
	}

	db := mustOpenSyncedDatabase(repoRoot)
	defer db.Close()

	g, err := diagram.BuildGraph(db, args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	out, err := diagram.Render(g, format, diagram.HTMLOptions{Layout: diagramLayout})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if diagramOutput == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(diagramOutput, []byte(out), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", diagramOutput, err)
	}
	if humanOutput {
		fmt.Printf("Wrote %s diagram of %s to %s\n", format, args[0], diagramOutput)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: diagramOutput})
	}
	return nil
}
