package common

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// TestConfig is read from tests/test_config.toml when present; missing
// keys keep their defaults.
type TestConfig struct {
	Results   ResultsConfig   `toml:"results"`
	Server    ServerConfig    `toml:"server"`
	Browser   BrowserSettings `toml:"browser"`
	Portfolio PortfolioConfig `toml:"portfolio"`
}

type ResultsConfig struct {
	Dir string `toml:"dir"`
}

type ServerConfig struct {
	URL string `toml:"url"`
}

type BrowserSettings struct {
	Headless    bool `toml:"headless"`
	TimeoutSecs int  `toml:"timeout_seconds"`
}

// PortfolioConfig is the selection the UI tests calculate with.
type PortfolioConfig struct {
	Symbols []string `toml:"symbols"`
	Capital int      `toml:"capital"`
}

var LoadTestConfig = sync.OnceValue(func() *TestConfig {
	cfg := &TestConfig{
		Results:   ResultsConfig{Dir: "tests/results"},
		Server:    ServerConfig{URL: "http://localhost:4251"},
		Browser:   BrowserSettings{Headless: true, TimeoutSecs: 45},
		Portfolio: PortfolioConfig{Symbols: []string{"SPY", "QQQ"}, Capital: 500000},
	}
	path := filepath.Join(FindProjectRoot(), "tests", "test_config.toml")
	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, cfg)
	}
	return cfg
})

var runDir = sync.OnceValue(func() string {
	base := LoadTestConfig().Results.Dir
	if !filepath.IsAbs(base) {
		base = filepath.Join(FindProjectRoot(), base)
	}
	return filepath.Join(base, time.Now().Format("20060102-150405"))
})

// GetResultsDir returns this run's artifact directory, creating it.
// OPTIMAXX_TEST_RESULTS_DIR overrides the timestamped default.
func GetResultsDir() string {
	dir := os.Getenv("OPTIMAXX_TEST_RESULTS_DIR")
	if dir == "" {
		dir = runDir()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	os.MkdirAll(dir, 0755)
	return dir
}

func GetScreenshotDir(suite string) string {
	dir := filepath.Join(GetResultsDir(), suite)
	os.MkdirAll(dir, 0755)
	return dir
}

// GetTestURL returns the portal under test: the started container,
// OPTIMAXX_TEST_URL, or the configured server.
func GetTestURL() string {
	if url := os.Getenv("OPTIMAXX_TEST_URL"); url != "" {
		return url
	}
	return LoadTestConfig().Server.URL
}
