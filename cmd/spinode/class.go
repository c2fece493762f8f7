package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/storage"
)

var classLimit int

func init() {
	classCmd.Flags().IntVar(&classLimit, "limit", 0, "Maximum classes to list (0 = all)")
	rootCmd.AddCommand(classCmd)
}

var classCmd = &cobra.Command{
	Use:   "class [name]",
	Short: "Show a class, or list all classes",
	Long: `Show a class's metadata, properties, relations and deployment paths.
Without a name, list the classes in the catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClass,
}

func runClass(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenSyncedDatabase(repoRoot)
	defer db.Close()

	if len(args) == 0 {
		classes, err := db.ListClasses(classLimit)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for _, c := range classes {
				fmt.Printf("%-24s %s\n", c.Name, c.Label)
			}
			return nil
		}
		if classes == nil {
			classes = []storage.ClassSummary{}
		}
		outputJSON(classes)
		return nil
	}

	c, err := db.GetClass(args[0])
	if errors.Is(err, storage.ErrClassNotFound) {
		exitWithError(ExitDataError, "class not found: %s", args[0])
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if !humanOutput {
		outputJSON(c)
		return nil
	}

	fmt.Printf("%s", c.Name)
	if c.Label != "" {
		fmt.Printf(" (%s)", c.Label)
	}
	fmt.Println()
	if c.Descr != "" {
		fmt.Printf("  %s\n", c.Descr)
	}
	if c.RnFormat != "" {
		fmt.Printf("  rn: %s\n", c.RnFormat)
	}
	if len(c.Props) > 0 {
		fmt.Println("\nProperties:")
		for _, p := range c.Props {
			marker := " "
			if p.IsNaming {
				marker = "*"
			}
			fmt.Printf("  %s %-20s %s\n", marker, p.Name, p.Descr)
			if len(p.Constants) > 0 {
				names := make([]string, len(p.Constants))
				for i, k := range p.Constants {
					names[i] = k.Name
				}
				fmt.Printf("      values: %s\n", strings.Join(names, ", "))
			}
		}
	}
	if len(c.Relations) > 0 {
		fmt.Println("\nRelations:")
		for _, r := range c.Relations {
			fmt.Printf("  %-6s -> %s\n", r.Type, r.Target)
		}
	}
	if len(c.DeploymentPaths) > 0 {
		fmt.Println("\nDeployment paths:")
		for _, p := range c.DeploymentPaths {
			fmt.Printf("  %s -> %s\n", p.Name, p.TargetClass)
		}
	}
	return nil
}
