package model

import "time"

// Config holds the complete finfact configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Sources     SourcesConfig     `yaml:"sources"`
	Search      SearchConfig      `yaml:"search"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls outbound HTTP behavior shared by all data sources
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`

	// Per-host rate limit for data source and search calls
	RatePerHost float64 `yaml:"rate_per_host"`
	Burst       int     `yaml:"burst"`

	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// CacheConfig controls the layered lookup cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ClassifierConfig controls the attribute classification oracle
type ClassifierConfig struct {
	// Oracle backend: "rules", "openai", "anthropic", "ollama"
	Oracle string `yaml:"oracle"`

	Model     string `yaml:"model,omitempty"`
	APIKey    string `yaml:"-"` // From environment only, never persisted
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// SourcesConfig controls the backing data sources, in fallback order
type SourcesConfig struct {
	Yahoo YahooConfig `yaml:"yahoo"`
	Alpha AlphaConfig `yaml:"alphavantage"`
}

// YahooConfig controls the Yahoo Finance source
type YahooConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// AlphaConfig controls the Alpha Vantage source
type AlphaConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url,omitempty"`
	APIKey  string `yaml:"-"` // From environment only
}

// SearchConfig controls the web search fallback
type SearchConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url,omitempty"`
	APIKey     string `yaml:"-"` // From environment only
	MaxResults int    `yaml:"max_results"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls diagnostics
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "finfact/0.1 (+https://github.com/ppiankov/finfact)",
			MaxBodyBytes: 2_000_000,
			RatePerHost:  2.0,
			Burst:        4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 5 * time.Minute,
			DiskTTL:   1 * time.Hour,
		},
		Classifier: ClassifierConfig{
			Oracle:    "rules",
			Timeout:   30,
			MaxTokens: 20,
		},
		Sources: SourcesConfig{
			Yahoo: YahooConfig{Enabled: true},
			Alpha: AlphaConfig{Enabled: false},
		},
		Search: SearchConfig{
			Enabled:    false,
			MaxResults: 3,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
