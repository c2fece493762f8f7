package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/meta"
	"github.com/spinode/spinode/internal/moquery"
	"github.com/spinode/spinode/internal/storage"
)

func init() {
	rootCmd.AddCommand(optionsCmd)
}

var optionsCmd = &cobra.Command{
	Use:   "options <class>",
	Short: "List the operators, pipeline steps and templates offered for a class",
	Long: `List what the builder offers for a class: its properties, the filter
operators, pipeline steps derived from the property names, and starter
templates. Template numbers are what 'spinode build --template' expects.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptions,
}

// OptionsResult is the response for the options command.
type OptionsResult struct {
	Class      string                    `json:"class"`
	Properties []meta.PropertyDescriptor `json:"properties"`
	Operators  []moquery.OperatorInfo    `json:"operators"`
	Pipeline   []meta.PipelineOption     `json:"pipeline"`
	Templates  []meta.Template           `json:"templates"`
}

func runOptions(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenSyncedDatabase(repoRoot)
	defer db.Close()

	className := args[0]
	props, err := db.PropertyDescriptors(className)
	if errors.Is(err, storage.ErrClassNotFound) {
		exitWithError(ExitDataError, "class not found: %s", className)
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	res := OptionsResult{
		Class:      className,
		Properties: props,
		Operators:  moquery.Operators(),
		Pipeline:   meta.DerivePipelineOptions(meta.PropertyNames(props)),
		Templates:  meta.DeriveTemplates(props),
	}
	if res.Properties == nil {
		res.Properties = []meta.PropertyDescriptor{}
	}
	if res.Templates == nil {
		res.Templates = []meta.Template{}
	}

	if !humanOutput {
		outputJSON(res)
		return nil
	}

	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	fmt.Printf("Class: %s\n", className)
	fmt.Printf("Properties: %s\n", strings.Join(names, ", "))
	fmt.Println("\nOperators:")
	for _, op := range res.Operators {
		fmt.Printf("  %-10s %s\n", op.Operator, op.Label)
	}
	fmt.Println("\nPipeline:")
	for _, p := range res.Pipeline {
		fmt.Printf("  %-28s %s\n", p.ID, p.Label)
	}
	if len(res.Templates) > 0 {
		fmt.Println("\nTemplates:")
		for i, t := range res.Templates {
			fmt.Printf("  %d. %s\n", i+1, t.Title)
		}
	}
	return nil
}
