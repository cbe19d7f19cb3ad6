package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/drallgood/abs-cli/internal/logger"
)

// LoadFromFile parses a configuration file without applying environment overrides.
// Files ending in .yaml or .yml are read as YAML, everything else as TOML.
// A missing file returns an error satisfying os.IsNotExist.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ConfigError{
			Field: filepath.Base(path),
			Msg:   fmt.Sprintf("could not be parsed: %v", err),
		}
	}
	cfg.Path = path

	logger.Get().Debug("Parsed configuration file", map[string]interface{}{
		"config_file":   path,
		"server_url":    cfg.ServerURL,
		"has_api_token": cfg.APIToken != "",
	})

	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Existing variables win. An empty path tries ./.env and ignores its absence.
func LoadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ResolvePath expands a leading ~ and makes path absolute.
// An empty path resolves to DefaultConfigPath.
func ResolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = DefaultConfigPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
