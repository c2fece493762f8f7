package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/config"
	"github.com/spinode/spinode/internal/storage"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a spinode repository in the current directory",
	Long: `Create a .spinode directory holding config.json, an empty classes.jsonl
and the SQLite database.

Run 'spinode seed' or 'spinode import' afterwards to load classes.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	if config.IsRepository(cwd) {
		exitWithError(ExitConfigError, "already a spinode repository: %s", config.SpinodePath(cwd))
	}

	if err := os.MkdirAll(config.SpinodePath(cwd), 0755); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.SpinodeDir, err)
	}
	if err := (&config.Config{}).Save(cwd); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := storage.WriteClasses(config.ClassesPath(cwd), nil); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db := mustOpenDatabase(cwd)
	db.Close()

	if humanOutput {
		fmt.Printf("Initialized spinode repository in %s\n", config.SpinodePath(cwd))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.SpinodePath(cwd)})
	}
	return nil
}
