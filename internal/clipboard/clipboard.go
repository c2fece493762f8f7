// Package clipboard copies rendered commands to the system clipboard via
// platform helper programs.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard helper is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// candidates lists helper commands per OS, in preference order.
var candidates = map[string][][]string{
	"darwin": {{"pbcopy"}},
	"linux": {
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	},
	"windows": {{"clip"}},
}

// clipboardCommand returns the argv of the first usable helper.
// wl-copy is only considered inside a Wayland session.
func clipboardCommand(goos string, lookPath func(string) (string, error), getenv func(string) string) ([]string, error) {
	for _, argv := range candidates[goos] {
		if argv[0] == "wl-copy" && getenv("WAYLAND_DISPLAY") == "" {
			continue
		}
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether a clipboard helper is installed.
func IsAvailable() bool {
	_, err := clipboardCommand(runtime.GOOS, exec.LookPath, os.Getenv)
	return err == nil
}

// Copy writes text to the system clipboard.
func Copy(text string) error {
	argv, err := clipboardCommand(runtime.GOOS, exec.LookPath, os.Getenv)
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
