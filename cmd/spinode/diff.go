package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/catalog"
	"github.com/spinode/spinode/internal/git"
)

var diffSince string

func init() {
	diffCmd.Flags().StringVar(&diffSince, "since", "HEAD", "Commit to compare against (SHA, HEAD~N, branch or tag)")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show classes added, removed or changed since a commit",
	Long: `Compare the working tree classes.jsonl with the version at a commit.

Useful for reviewing catalog imports before committing.

Examples:
  spinode diff
  spinode diff --since HEAD~3 --human`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

// DiffClass is a class entry in diff output.
type DiffClass struct {
	Name   string `json:"name"`
	Module string `json:"module,omitempty"`
	Label  string `json:"label,omitempty"`
}

// DiffResult is the response for the diff command.
type DiffResult struct {
	Since   string      `json:"since"`
	Added   []DiffClass `json:"added"`
	Removed []DiffClass `json:"removed"`
	Changed []string    `json:"changed"`
}

func toDiffClasses(classes []catalog.Class) []DiffClass {
	out := make([]DiffClass, 0, len(classes))
	for _, c := range classes {
		out = append(out, DiffClass{Name: c.Name, Module: c.Module, Label: c.Label})
	}
	return out
}

func runDiff(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	gitRoot, err := git.FindRepoRoot(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "%s is not inside a git repository", repoRoot)
	}

	d, err := git.DiffSince(gitRoot, repoRoot, diffSince)
	if err != nil {
		if errors.Is(err, git.ErrCommitNotFound) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitDataError, "computing diff: %v", err)
	}

	result := DiffResult{
		Since:   diffSince,
		Added:   toDiffClasses(d.Added),
		Removed: toDiffClasses(d.Removed),
		Changed: d.Changed,
	}
	if humanOutput {
		printDiffHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

func printDiffHuman(r DiffResult) {
	if len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0 {
		fmt.Printf("No changes since %s.\n", r.Since)
		return
	}
	fmt.Printf("Changes since %s:\n\n", r.Since)
	for _, c := range r.Added {
		fmt.Printf("  + %s  %s\n", c.Name, truncate(c.Label, 50))
	}
	for _, c := range r.Removed {
		fmt.Printf("  - %s  %s\n", c.Name, truncate(c.Label, 50))
	}
	for _, name := range r.Changed {
		fmt.Printf("  ~ %s\n", name)
	}
}
