package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	// DefaultConfigPath is used when no --config flag is given
	DefaultConfigPath = "~/.config/abs-cli/config.toml"

	// DefaultHardcoverURL is the Hardcover GraphQL endpoint
	DefaultHardcoverURL = "https://api.hardcover.app/v1/graphql"
)

// DefaultSecretCommand reads the API token from 1Password
var DefaultSecretCommand = []string{"op", "read", "op://Private/Audiobookshelf/API Token"}

// Config holds the connection settings for the Audiobookshelf server
type Config struct {
	// ServerURL is the base URL of the Audiobookshelf server, without the /api prefix
	ServerURL string `toml:"server_url" yaml:"server_url"`
	// APIToken is optional; the secret command is asked when it is empty
	APIToken string `toml:"api_token" yaml:"api_token"`

	Logging struct {
		Level  string `toml:"level" yaml:"level"`
		Format string `toml:"format" yaml:"format"`
	} `toml:"logging" yaml:"logging"`

	Secrets struct {
		// Command is the argv of an external secret lookup printing the token on stdout
		Command []string `toml:"command" yaml:"command"`
	} `toml:"secrets" yaml:"secrets"`

	Hardcover struct {
		URL   string `toml:"url" yaml:"url"`
		Token string `toml:"token" yaml:"token"`
	} `toml:"hardcover" yaml:"hardcover"`

	// Path is the file the configuration was read from, empty when none was found
	Path string `toml:"-" yaml:"-"`
}

// ConfigError represents a configuration problem the user has to fix locally
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Msg
}

// Load reads the configuration file at path (DefaultConfigPath when empty),
// applies environment overrides and validates the result.
// Priority: 1) environment variables, 2) config file, 3) defaults.
func Load(path string) (*Config, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFromFile(resolved)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// A missing file is fine as long as the environment provides the server URL
		if os.Getenv("ABS_SERVER_URL") == "" {
			return nil, &ConfigError{
				Field: "server_url",
				Msg:   fmt.Sprintf("is not set: configuration file %s not found (create it or set ABS_SERVER_URL)", resolved),
			}
		}
		cfg = &Config{}
	}

	loadFromEnv(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		where := "the configuration file"
		if c.Path != "" {
			where = c.Path
		}
		return &ConfigError{
			Field: "server_url",
			Msg:   "is required: add it to " + where + " or set ABS_SERVER_URL",
		}
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{
			Field: "server_url",
			Msg:   fmt.Sprintf("must be an http(s) URL, got %q", c.ServerURL),
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	c.APIToken = strings.TrimSpace(c.APIToken)
	if len(c.Secrets.Command) == 0 {
		c.Secrets.Command = append([]string(nil), DefaultSecretCommand...)
	}
	if c.Hardcover.URL == "" {
		c.Hardcover.URL = DefaultHardcoverURL
	}
}

// loadFromEnv overrides file values with environment variables
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("ABS_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("ABS_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("HARDCOVER_TOKEN"); v != "" {
		cfg.Hardcover.Token = v
	}
	if v := os.Getenv("HARDCOVER_URL"); v != "" {
		cfg.Hardcover.URL = v
	}
}
