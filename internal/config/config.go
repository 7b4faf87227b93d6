package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the yelpb API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Sources   SourcesConfig   `yaml:"sources"`
	Usage     UsageConfig     `yaml:"usage"`
	Database  DatabaseConfig  `yaml:"database"`
	Assistant AssistantConfig `yaml:"assistant"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// SourcesConfig groups the upstream business data sources.
type SourcesConfig struct {
	Yelp YelpConfig `yaml:"yelp"`
	// BranchTimeoutSec bounds each branch of a combined search.
	BranchTimeoutSec int `yaml:"branch_timeout_sec"`
}

// YelpConfig holds settings for the chat and listing APIs.
type YelpConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unpaced
	Burst             int     `yaml:"burst"`
}

// UsageConfig holds per-source daily request quotas.
type UsageConfig struct {
	DailyRequestLimit int64  `yaml:"daily_request_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// DatabaseConfig holds the optional Redis connection used for usage counters.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a store is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// AssistantConfig selects the text analysis provider.
type AssistantConfig struct {
	Provider string `yaml:"provider"` // "", "gemini", "openai"
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

// Enabled reports whether an analysis provider is configured.
func (a AssistantConfig) Enabled() bool { return a.Provider != "" && a.APIKey != "" }

// RateLimitConfig holds inbound request limits.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"` // 0 = disabled
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return parse(data)
}

func parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	// combined search may wait on a 30s branch
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 40
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Sources.Yelp.BaseURL == "" {
		c.Sources.Yelp.BaseURL = "https://api.yelp.com"
	}
	if c.Sources.Yelp.TimeoutSec <= 0 {
		c.Sources.Yelp.TimeoutSec = 30
	}
	if c.Sources.Yelp.RequestsPerSecond > 0 && c.Sources.Yelp.Burst <= 0 {
		c.Sources.Yelp.Burst = 1
	}
	if c.Sources.BranchTimeoutSec <= 0 {
		c.Sources.BranchTimeoutSec = 30
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "yelpb:"
	}
	if c.Assistant.Provider == "gemini" && c.Assistant.Model == "" {
		c.Assistant.Model = "gemini-2.5-flash"
	}
	if c.Assistant.Provider == "openai" && c.Assistant.Model == "" {
		c.Assistant.Model = "gpt-4o-mini"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Sources.Yelp.APIKey == "" {
		return fmt.Errorf("sources.yelp.api_key is required")
	}
	if c.Sources.Yelp.RequestsPerSecond < 0 {
		return fmt.Errorf("sources.yelp.requests_per_second must not be negative")
	}
	switch c.Usage.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf("usage.action must be \"warn\" or \"reject\", got %q", c.Usage.Action)
	}
	if c.Usage.DailyRequestLimit < 0 {
		return fmt.Errorf("usage.daily_request_limit must not be negative")
	}
	switch c.Assistant.Provider {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("assistant.provider must be \"gemini\" or \"openai\", got %q", c.Assistant.Provider)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must not be negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
