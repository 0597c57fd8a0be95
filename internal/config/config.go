package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Portfolio   PortfolioConfig      `toml:"portfolio"`
	Market      MarketConfig         `toml:"market"`
	Storage     StorageConfig        `toml:"storage"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// PortfolioConfig holds the rules applied to a Selection.
type PortfolioConfig struct {
	MinCapital     float64 `toml:"min_capital"`
	DefaultCapital float64 `toml:"default_capital"`
	CapitalStep    float64 `toml:"capital_step"`
	Currency       string  `toml:"currency"`
}

// MarketConfig contains market data provider and cache settings.
// Durations are Go duration strings ("1h", "30m").
type MarketConfig struct {
	Provider        string `toml:"provider"`
	MaxRetries      int    `toml:"max_retries"`
	MaxConcurrency  int    `toml:"max_concurrency"`
	CacheTTL        string `toml:"cache_ttl"`
	CacheMaxEntries int    `toml:"cache_max_entries"`
	StoreTTL        string `toml:"store_ttl"`
	WarmSchedule    string `toml:"warm_schedule"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings. An empty path disables
// the persistent price store.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// CacheTTLDuration returns the in-memory price cache TTL.
func (m MarketConfig) CacheTTLDuration() time.Duration {
	return parseDuration(m.CacheTTL, time.Hour)
}

// StoreTTLDuration returns how long a persisted series counts as fresh.
func (m MarketConfig) StoreTTLDuration() time.Duration {
	return parseDuration(m.StoreTTL, 12*time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// IsDevMode returns true when running in the dev environment.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the externally visible base URL of the portal.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// Validate returns a list of human-readable configuration problems.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.Portfolio.MinCapital < 0 {
		issues = append(issues, "portfolio.min_capital must not be negative")
	}
	if c.Portfolio.DefaultCapital < c.Portfolio.MinCapital {
		issues = append(issues, fmt.Sprintf("portfolio.default_capital (%.0f) is below portfolio.min_capital (%.0f)", c.Portfolio.DefaultCapital, c.Portfolio.MinCapital))
	}
	if strings.TrimSpace(c.Portfolio.Currency) == "" {
		issues = append(issues, "portfolio.currency is required")
	}
	switch strings.ToLower(c.Market.Provider) {
	case "yahoo":
	default:
		issues = append(issues, fmt.Sprintf("market.provider %q is not supported (use \"yahoo\")", c.Market.Provider))
	}
	if c.Market.MaxConcurrency < 1 {
		issues = append(issues, "market.max_concurrency must be at least 1")
	}
	for name, v := range map[string]string{"market.cache_ttl": c.Market.CacheTTL, "market.store_ttl": c.Market.StoreTTL} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			issues = append(issues, fmt.Sprintf("%s is not a valid duration: %q", name, v))
		}
	}
	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies OPTIMAXX_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("OPTIMAXX_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("OPTIMAXX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("OPTIMAXX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if v := os.Getenv("OPTIMAXX_MIN_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Portfolio.MinCapital = f
		}
	}
	if v := os.Getenv("OPTIMAXX_CURRENCY"); v != "" {
		config.Portfolio.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("OPTIMAXX_MARKET_CACHE_TTL"); v != "" {
		config.Market.CacheTTL = v
	}
	if v := os.Getenv("OPTIMAXX_MARKET_WARM_SCHEDULE"); v != "" {
		config.Market.WarmSchedule = v
	}
	if badgerPath, ok := os.LookupEnv("OPTIMAXX_BADGER_PATH"); ok {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("OPTIMAXX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
