// Package config loads the client configuration. Precedence, lowest to
// highest: built-in defaults, the YAML config file, the STAX_API_BASE
// environment variable, then CLI flags (applied by the caller).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAPIBase  = "http://localhost:8080"
	DefaultPageSize = 20
)

// Config is the client configuration.
type Config struct {
	APIBase  string `yaml:"api_base"`
	PageSize int    `yaml:"page_size"`
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "stax", "config.yaml"), nil
}

// Load reads the config file at path and applies the environment override.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIBase:  DefaultAPIBase,
		PageSize: DefaultPageSize,
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if env := os.Getenv("STAX_API_BASE"); env != "" {
		cfg.APIBase = env
	}

	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return cfg, nil
}
