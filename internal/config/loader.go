package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file name searched in the
	// current and home directories.
	DefaultConfigFile = ".prodscout"

	// XDGConfigFile is the configuration file name inside XDGConfigDir.
	XDGConfigFile = "config.yaml"
)

// Environment variables that override the configuration file.
const (
	EnvAPIKey        = "OPENAI_API_KEY"
	EnvBaseURL       = "OPENAI_BASE_URL"
	EnvModelName     = "OPENAI_MODEL_NAME"
	EnvListenAddress = "PRODSCOUT_LISTEN_ADDR"
	EnvDatabaseDir   = "PRODSCOUT_DB_DIR"
	EnvVerbose       = "PRODSCOUT_VERBOSE"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML file on top of cfg. Keys missing from the file
// keep the values already in cfg, so callers normally pass NewConfig().
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.ConfigFilePath = path
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .prodscout in the current directory
// 3. Look for .prodscout in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ApplyEnv overrides cfg with values from the environment. getenv is
// usually os.Getenv; tests pass a map lookup.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvAPIKey); v != "" {
		cfg.Model.APIKey = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		cfg.Model.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv(EnvModelName); v != "" {
		cfg.Model.Name = v
	}
	if v := getenv(EnvListenAddress); v != "" {
		cfg.ListenAddress = v
	}
	if v := getenv(EnvDatabaseDir); v != "" {
		cfg.Database.Dir = v
		cfg.Database.Enabled = true
	}
	if v := getenv(EnvVerbose); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Verbose = b
		}
	}
}

// Load builds the effective configuration: defaults, then the config file
// (explicit path or the first one found), then the environment.
// An explicit path that does not exist is an error; a missing default file
// is not.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg := NewConfig()

	path := FindConfigFile(configPath)
	switch {
	case path != "":
		if err := LoadConfigFile(path, cfg); err != nil {
			return nil, err
		}
	case configPath != "":
		return nil, ErrConfigNotFound
	}

	ApplyEnv(cfg, getenv)
	return cfg, nil
}
