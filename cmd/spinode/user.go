package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spinode/spinode/internal/auth"
	"github.com/spinode/spinode/internal/storage"
)

// EnvPassword supplies the password non-interactively.
const EnvPassword = "SPINODE_PASSWORD"

// loginTimeout bounds how long a login waits for throttle slots across all
// attempts.
const loginTimeout = 30 * time.Second

var (
	userAdmin     bool
	loginAttempts int
)

func init() {
	userAddCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant admin rights")
	userLoginCmd.Flags().IntVar(&loginAttempts, "attempts", auth.DefaultMaxAttempts, "Maximum password attempts (one per stdin line)")
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userLoginCmd)
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local users",
	Long: `Manage local users recorded in audit logs.

The password is read from $SPINODE_PASSWORD, or the first line of stdin.
'user login' reads one attempt per stdin line; retries after a wrong
password are throttled.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userLoginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Check a user's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserLogin,
}

// readPassword returns $SPINODE_PASSWORD or the first line of r.
func readPassword(r io.Reader) (string, error) {
	if pw := os.Getenv(EnvPassword); pw != "" {
		return pw, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// passwordLines yields $SPINODE_PASSWORD once, or else one attempt per line
// of r.
func passwordLines(r io.Reader) auth.PasswordSource {
	if pw := os.Getenv(EnvPassword); pw != "" {
		used := false
		return func() (string, bool, error) {
			if used {
				return "", false, nil
			}
			used = true
			return pw, true, nil
		}
	}
	br := bufio.NewReader(r)
	done := false
	return func() (string, bool, error) {
		if done {
			return "", false, nil
		}
		line, err := br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", false, fmt.Errorf("reading password: %w", err)
			}
			done = true
			if line == "" {
				return "", false, nil
			}
		}
		return strings.TrimRight(line, "\r\n"), true, nil
	}
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	u, err := auth.NewUser(args[0], password, userAdmin)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	if err := db.CreateUser(u); err != nil {
		code := ExitError
		if errors.Is(err, storage.ErrUserExists) {
			code = ExitDataError
		}
		exitWithError(code, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Created user %s\n", u.Username)
	} else {
		outputJSON(u)
	}
	return nil
}

func runUserLogin(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	u, attempts, err := auth.NewAuthenticator(db).LoginWithRetries(ctx, args[0], passwordLines(cmd.InOrStdin()), loginAttempts)
	slog.Debug("login finished", "user", args[0], "attempts", attempts, "err", err)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		exitWithError(ExitAuthError, "%v", err)
	case errors.Is(err, auth.ErrEmptyUsername), errors.Is(err, auth.ErrEmptyPassword):
		exitWithError(ExitDataError, "%v", err)
	case err != nil:
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Logged in as %s\n", u.Username)
	} else {
		outputJSON(u)
	}
	return nil
}
