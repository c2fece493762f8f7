// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents repository configuration stored in .spinode/config.json.
type Config struct {
	DefaultUser   string `json:"default_user,omitempty"`   // Recorded on audit runs when no user is given
	DiagramFormat string `json:"diagram_format,omitempty"` // mermaid, ascii or html
	SearchLimit   int    `json:"search_limit,omitempty"`   // Max search hits; 0 means DefaultSearchLimit
}

const (
	SpinodeDir  = ".spinode"
	ConfigFile  = "config.json"
	ClassesFile = "classes.jsonl"
	DBFile      = "spinode.db"

	DefaultSearchLimit = 50
)

// Config keys accepted by Get and Set.
const (
	KeyDefaultUser   = "default_user"
	KeyDiagramFormat = "diagram_format"
	KeySearchLimit   = "search_limit"
)

// Keys lists the config keys in display order.
var Keys = []string{KeyDefaultUser, KeyDiagramFormat, KeySearchLimit}

// ValidDiagramFormats lists the accepted diagram_format values.
var ValidDiagramFormats = []string{"mermaid", "ascii", "html"}

// SpinodePath returns the path to the .spinode directory from a root path.
func SpinodePath(root string) string {
	return filepath.Join(root, SpinodeDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, SpinodeDir, ConfigFile)
}

// ClassesPath returns the path to classes.jsonl from a root path.
func ClassesPath(root string) string {
	return filepath.Join(root, SpinodeDir, ClassesFile)
}

// DBPath returns the path to the SQLite database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, SpinodeDir, DBFile)
}

// IsRepository checks if the given path contains a spinode repository.
func IsRepository(root string) bool {
	info, err := os.Stat(SpinodePath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a spinode repository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a spinode repository (no %s directory found)", SpinodeDir)
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// EffectiveSearchLimit returns SearchLimit or the default when unset.
func (c *Config) EffectiveSearchLimit() int {
	if c.SearchLimit > 0 {
		return c.SearchLimit
	}
	return DefaultSearchLimit
}

// EffectiveDiagramFormat returns DiagramFormat or "mermaid" when unset.
func (c *Config) EffectiveDiagramFormat() string {
	if c.DiagramFormat == "" {
		return "mermaid"
	}
	return c.DiagramFormat
}

// Get returns the string form of a config value.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyDefaultUser:
		return c.DefaultUser, nil
	case KeyDiagramFormat:
		return c.DiagramFormat, nil
	case KeySearchLimit:
		if c.SearchLimit == 0 {
			return "", nil
		}
		return strconv.Itoa(c.SearchLimit), nil
	default:
		return "", fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys)
	}
}

// Set validates and stores a config value.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyDefaultUser:
		c.DefaultUser = value
	case KeyDiagramFormat:
		if err := ValidateDiagramFormat(value); err != nil {
			return err
		}
		c.DiagramFormat = value
	case KeySearchLimit:
		n, err := ValidateSearchLimit(value)
		if err != nil {
			return err
		}
		c.SearchLimit = n
	default:
		return fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys)
	}
	return nil
}

// ValidateDiagramFormat checks that the format value is valid.
func ValidateDiagramFormat(format string) error {
	if format == "" {
		return nil // Empty defaults to mermaid
	}
	for _, valid := range ValidDiagramFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid diagram_format: %s (valid: %v)", format, ValidDiagramFormats)
}

// ValidateSearchLimit parses a search limit. Empty clears it.
func ValidateSearchLimit(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid search_limit: %s (must be a positive integer)", value)
	}
	return n, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
