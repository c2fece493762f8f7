package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/audit"
)

var logLimit int

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum records to show (0 = all)")
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recently logged commands",
	Long:  `Show audit records written by 'spinode build --log', newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

const logCommandMaxLen = 80

func runLog(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	runs, err := db.RecentRuns(logLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if !humanOutput {
		if runs == nil {
			runs = []audit.Run{}
		}
		outputJSON(runs)
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No logged commands")
		return nil
	}
	for _, r := range runs {
		user := r.User
		if user == "" {
			user = "-"
		}
		fmt.Printf("%s  %-7s  %-10s  %s\n", r.RanAt, r.Status, user, truncate(r.Command, logCommandMaxLen))
		if r.ErrorText != "" {
			fmt.Printf("    error: %s\n", r.ErrorText)
		}
	}
	return nil
}
