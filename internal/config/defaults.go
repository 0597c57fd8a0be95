package config

import "github.com/bobmcallan/optimaxx-portal/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4251,
			Host: "localhost",
		},
		Portfolio: PortfolioConfig{
			MinCapital:     500000,
			DefaultCapital: 500000,
			CapitalStep:    10000,
			Currency:       "MXN",
		},
		Market: MarketConfig{
			Provider:        "yahoo",
			MaxRetries:      3,
			MaxConcurrency:  4,
			CacheTTL:        "1h",
			CacheMaxEntries: 512,
			StoreTTL:        "12h",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/optimaxx",
			},
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/optimaxx.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}
