// ABOUTME: Configuration loading and parsing for coven-vars
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete coven-vars configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Gateway GatewayConfig `yaml:"gateway"`
	Auth    AuthConfig    `yaml:"auth"`
	Audit   AuditConfig   `yaml:"audit"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig holds variable storage configuration
type StoreConfig struct {
	// Path to the variables.json file; empty means the default under
	// the user config directory.
	Path string `yaml:"path"`
}

// GatewayConfig holds the IPC gateway listener configuration
type GatewayConfig struct {
	// Socket is the unix socket path the daemon listens on; empty means
	// the default under the user data directory.
	Socket string `yaml:"socket"`
	// HTTPAddr optionally exposes the same API over TCP, e.g. "127.0.0.1:7411".
	HTTPAddr string `yaml:"http_addr"`

	RequestTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// JWTSecret enables bearer-token auth on the gateway when set.
	JWTSecret string `yaml:"jwt_secret"`
}

// AuditConfig holds audit log configuration
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path to the audit SQLite database; empty means the default under
	// the user data directory.
	Path string `yaml:"path"`
}

// ModelConfig holds remote model client configuration
type ModelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with all defaults applied, used when
// no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in any unset fields.
func (c *Config) applyDefaults() {
	if c.Gateway.Socket == "" {
		c.Gateway.Socket = filepath.Join(DataDir(), "gateway.sock")
	}
	if c.Gateway.RequestTimeout == 0 {
		c.Gateway.RequestTimeout = 10 * time.Second
	}
	if c.Audit.Path == "" {
		c.Audit.Path = filepath.Join(DataDir(), "audit.db")
	}
	if c.Model.APIURL == "" {
		c.Model.APIURL = "https://api.anthropic.com/v1/messages"
	}
	if c.Model.MaxTokens == 0 {
		c.Model.MaxTokens = 1024
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all configuration fields hold usable values.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}

	if c.Model.Enabled && c.Model.APIKey == "" {
		return fmt.Errorf("model.api_key is required when the model client is enabled")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Gateway.RequestTimeoutRaw != "" {
		cfg.Gateway.RequestTimeout, err = time.ParseDuration(cfg.Gateway.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Gateway.RequestTimeoutRaw, err)
		}
	}

	return nil
}

// Path returns the config file location.
// Priority: COVEN_VARS_CONFIG env var > XDG_CONFIG_HOME/coven-vars/config.yaml > ~/.config/coven-vars/config.yaml
func Path() string {
	if envPath := os.Getenv("COVEN_VARS_CONFIG"); envPath != "" {
		return envPath
	}
	return filepath.Join(configDir(), "config.yaml")
}

// configDir returns the coven-vars config directory.
func configDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "." // fallback
		}
		base = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(base, "coven-vars")
}

// DataDir returns the coven-vars data directory.
// Priority: XDG_DATA_HOME/coven-vars > ~/.local/share/coven-vars
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		base = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(base, "coven-vars")
}

// StorePath resolves the configured variables file, falling back to the
// default under the user config directory.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(configDir(), "variables.json")
}
