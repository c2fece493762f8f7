package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/audit"
	"github.com/spinode/spinode/internal/builder"
	"github.com/spinode/spinode/internal/clipboard"
	"github.com/spinode/spinode/internal/config"
	"github.com/spinode/spinode/internal/moquery"
	"github.com/spinode/spinode/internal/storage"
)

var (
	buildWhere    []string
	buildPipes    []string
	buildTemplate int
	buildCopy     bool
	buildLog      bool
	buildStatus   string
	buildErrText  string
	buildUser     string
)

func init() {
	buildCmd.Flags().StringArrayVarP(&buildWhere, "where", "w", nil, `Condition "<prop> <operator> <value>" (repeatable)`)
	buildCmd.Flags().StringArrayVarP(&buildPipes, "pipe", "p", nil, "Pipeline step id (repeatable, see 'spinode options')")
	buildCmd.Flags().IntVarP(&buildTemplate, "template", "t", 0, "Start from template N (1-based, see 'spinode options')")
	buildCmd.Flags().BoolVar(&buildCopy, "copy", false, "Copy the command to the clipboard")
	buildCmd.Flags().BoolVar(&buildLog, "log", false, "Record the command in the audit log")
	buildCmd.Flags().StringVar(&buildStatus, "status", audit.StatusDraft, "Audit status: draft, success or fail")
	buildCmd.Flags().StringVar(&buildErrText, "error", "", "Audit error text (with --status fail)")
	buildCmd.Flags().StringVar(&buildUser, "user", "", "User recorded in the audit log")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build <class>",
	Short: "Render a moquery command for a class",
	Long: `Render a moquery command line from filter conditions and pipeline steps.

Conditions are "<property> <operator> <value>"; the value may contain spaces.
Operators: exact (=), contains, regex, startswith, in, ne (!=), gt (>),
ge (>=), lt (<), le (<=).

A template replaces everything before --where and --pipe are applied on top.
The command is printed, never executed.

Examples:
  spinode build fvBD
  spinode build l3extOut -w "name startswith OUT-" -w "descr ne lab"
  spinode build bgpPeerEntry -p grep:bgp -p sortu --copy
  spinode build l3extOut --template 2 --log --status success`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

// BuildResult is the response for the build command.
type BuildResult struct {
	Class      string              `json:"class"`
	Conditions []moquery.Condition `json:"conditions"`
	Pipes      []moquery.StepID    `json:"pipes"`
	Command    string              `json:"command"`
	Copied     bool                `json:"copied,omitempty"`
	RunID      string              `json:"run_id,omitempty"`
}

// parseWhere splits "<prop> <op> <value>" on the first two runs of
// whitespace. The value keeps its inner spacing.
func parseWhere(s string) (prop, op, value string, err error) {
	rest := strings.TrimSpace(s)
	prop, rest = cutField(rest)
	op, rest = cutField(rest)
	value = rest
	if prop == "" {
		return "", "", "", moquery.ErrMissingProperty
	}
	if op == "" {
		return "", "", "", moquery.ErrMissingOperator
	}
	if value == "" {
		return "", "", "", moquery.ErrMissingValue
	}
	return prop, op, value, nil
}

// cutField returns the first whitespace-delimited field and the trimmed rest.
func cutField(s string) (field, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// applyBuildInputs feeds template, conditions and pipes into the session.
func applyBuildInputs(s *builder.Session, template int, where, pipes []string) error {
	if template != 0 {
		templates := s.Templates()
		if template < 1 || template > len(templates) {
			return fmt.Errorf("template %d out of range (class has %d)", template, len(templates))
		}
		s.ApplyTemplate(templates[template-1])
	}

	for _, w := range where {
		prop, op, value, err := parseWhere(w)
		if err != nil {
			return fmt.Errorf("incomplete condition %q: %w", w, err)
		}
		if err := s.Add(prop, op, value); err != nil {
			return fmt.Errorf("condition %q: %w", w, err)
		}
	}

	for _, p := range pipes {
		if err := s.Select(moquery.StepID(p)); err != nil {
			return err
		}
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	className := args[0]
	if buildLog && !audit.IsValidStatus(buildStatus) {
		exitWithError(ExitError, "invalid status %q (valid: %v)", buildStatus, audit.ValidStatuses)
	}

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	db := mustOpenSyncedDatabase(repoRoot)
	defer db.Close()

	props, err := db.PropertyDescriptors(className)
	if errors.Is(err, storage.ErrClassNotFound) {
		slog.Warn("class not in catalog; properties are not checked", "class", className)
		props = nil
	} else if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	session, err := builder.New(className, props)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := applyBuildInputs(session, buildTemplate, buildWhere, buildPipes); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	res := BuildResult{
		Class:      className,
		Conditions: session.Conditions(),
		Pipes:      session.SelectedSteps(),
		Command:    session.Command(),
	}

	if buildCopy {
		if err := clipboard.Copy(res.Command); err != nil {
			warn("could not copy to clipboard: %v", err)
		} else {
			res.Copied = true
		}
	}

	if buildLog {
		run := audit.NewRun(config.ResolveUser(buildUser, cfg), className, res.Command, buildStatus, buildErrText)
		if err := db.LogRun(run); err != nil {
			exitWithError(ExitError, "logging run: %v", err)
		}
		slog.Debug("run logged", "id", run.ID, "status", run.Status)
		res.RunID = run.ID
	}

	if humanOutput {
		fmt.Println(res.Command)
		return nil
	}
	outputJSON(res)
	return nil
}
