// Package main provides the spinode CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/config"
	"github.com/spinode/spinode/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors (like missing flags) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "spinode",
	Short: "Build moquery commands from an object-model class catalog",
	Long: `spinode builds moquery command lines from a catalog of managed-object classes.

Core features:
  - Class catalog imported from YAML/JSONL, searchable with full-text search
  - Filter conditions rendered into a shell-safe moquery command
  - Pipeline steps and starter templates derived from each class's properties
  - Relationship diagrams (Mermaid, ASCII, HTML)
  - Audit log of rendered commands and local users

The catalog lives in git-versionable JSONL with SQLite for queries.
spinode never runs the commands it renders.
All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	rootCmd.Version = Version
}

// setupLogging installs a text slog handler on stderr.
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// mustFindRepository finds the repository from the working directory, falling
// back to the global repo_path. Exits on error.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if root, err := config.FindRepository(cwd); err == nil {
		slog.Debug("repository found", "root", root)
		return root
	}

	root, err := config.GlobalRepository()
	if err != nil {
		slog.Debug("no global repository", "err", err)
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	slog.Debug("using global repository", "root", root)
	return root
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustOpenSyncedDatabase opens the database and rebuilds the catalog tables
// first if classes.jsonl changed since the last rebuild.
func mustOpenSyncedDatabase(repoRoot string) *storage.DB {
	db := mustOpenDatabase(repoRoot)
	rebuilt, err := db.SyncIfStale(config.ClassesPath(repoRoot))
	if err != nil {
		db.Close()
		exitWithError(ExitDataError, "syncing catalog: %v", err)
	}
	if rebuilt {
		slog.Debug("catalog rebuilt from classes.jsonl")
	}
	return db
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}
