package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/spinode/config.yml.
type GlobalConfig struct {
	RepoPath string `yaml:"repo_path,omitempty"` // Repository used when cwd is not inside one
	User     string `yaml:"user,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "spinode"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// EnvUser overrides the configured user.
	EnvUser = "SPINODE_USER"
)

var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/spinode/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	cfg.RepoPath = ExpandPath(cfg.RepoPath)

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ErrRepoPathNotConfigured is returned when repo_path is not set.
var ErrRepoPathNotConfigured = errors.New("repo_path not configured")

// GlobalRepository returns the configured fallback repository after checking
// it holds a .spinode directory.
func GlobalRepository() (string, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.RepoPath == "" {
		return "", ErrRepoPathNotConfigured
	}
	if !IsRepository(cfg.RepoPath) {
		return "", fmt.Errorf("repo_path is not a spinode repository: %s", cfg.RepoPath)
	}
	return cfg.RepoPath, nil
}

// ResolveUser picks the acting user: explicit flag, then $SPINODE_USER, then
// the repository default, then the global config.
func ResolveUser(flag string, repo *Config) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvUser); env != "" {
		return env
	}
	if repo != nil && repo.DefaultUser != "" {
		return repo.DefaultUser
	}
	if cfg, err := LoadGlobalConfig(); err == nil {
		return cfg.User
	}
	return ""
}

// HelpfulConfigMessage explains how to point spinode at a repository.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No spinode repository found.

Run 'spinode init' here, or create %s to set a default:
  mkdir -p %s
  echo 'repo_path: /path/to/your/repo' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
