package clipboard

import (
	"errors"
	"os"
	"reflect"
	"runtime"
	"testing"
)

func fakeLookPath(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestClipboardCommand(t *testing.T) {
	wayland := env(map[string]string{"WAYLAND_DISPLAY": "wayland-0"})
	x11 := env(nil)

	tests := []struct {
		name      string
		goos      string
		installed []string
		getenv    func(string) string
		want      []string
	}{
		{"macOS", "darwin", []string{"pbcopy"}, x11, []string{"pbcopy"}},
		{"wayland prefers wl-copy", "linux", []string{"wl-copy", "xclip"}, wayland, []string{"wl-copy"}},
		{"x11 skips wl-copy", "linux", []string{"wl-copy", "xclip"}, x11, []string{"xclip", "-selection", "clipboard"}},
		{"xsel fallback", "linux", []string{"xsel"}, x11, []string{"xsel", "--clipboard", "--input"}},
		{"windows", "windows", []string{"clip"}, x11, []string{"clip"}},
		{"nothing installed", "linux", nil, x11, nil},
		{"unknown OS", "plan9", []string{"pbcopy"}, x11, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := clipboardCommand(tt.goos, fakeLookPath(tt.installed...), tt.getenv)
			if tt.want == nil {
				if !errors.Is(err, ErrClipboardUnavailable) {
					t.Errorf("error = %v, want ErrClipboardUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("clipboardCommand() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("clipboardCommand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCopy(t *testing.T) {
	if !IsAvailable() {
		t.Skip("clipboard not available on this system")
	}
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		t.Skip("no display session")
	}
	if err := Copy("moquery -c fvBD"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
}
