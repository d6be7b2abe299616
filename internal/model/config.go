package model

import (
	"fmt"
	"time"
)

// Config holds all runtime configuration.
// Fields carry both yaml (config show/init) and mapstructure (viper) tags.
type Config struct {
	ECFR         ECFRConfig         `yaml:"ecfr" mapstructure:"ecfr"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ECFRConfig configures the upstream versioner API client
type ECFRConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// HTTPConfig holds transport settings shared by outbound clients
type HTTPConfig struct {
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig configures the title XML cache
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL      time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	MemoryMaxBytes int           `yaml:"memory_max_bytes" mapstructure:"memory_max_bytes"` // Larger documents are cached on disk only
	DiskDir        string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL        time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds the per-title worker pool.
// Workers = 1 analyzes titles strictly in increasing order.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits requests to the upstream host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// StoreType selects the report store backend
type StoreType string

const (
	StoreSQLite   StoreType = "sqlite"
	StorePostgres StoreType = "postgres"
	StoreS3       StoreType = "s3"
	StoreMemory   StoreType = "memory"
)

// StoreConfig configures report persistence
type StoreConfig struct {
	Type        StoreType `yaml:"type" mapstructure:"type"`
	SQLitePath  string    `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	PostgresURL string    `yaml:"postgres_url" mapstructure:"postgres_url"`
	S3Bucket    string    `yaml:"s3_bucket" mapstructure:"s3_bucket"`
	S3Region    string    `yaml:"s3_region" mapstructure:"s3_region"`
	S3Prefix    string    `yaml:"s3_prefix" mapstructure:"s3_prefix"`
	S3Endpoint  string    `yaml:"s3_endpoint,omitempty" mapstructure:"s3_endpoint"`
	AccessKey   string    `yaml:"-" mapstructure:"access_key"`
	SecretKey   string    `yaml:"-" mapstructure:"secret_key"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	AnalyzeTimeout time.Duration `yaml:"analyze_timeout" mapstructure:"analyze_timeout"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // "" disables, "openai"
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"-" mapstructure:"api_key"`
	BaseURL       string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	StrictSources bool   `yaml:"strict_sources" mapstructure:"strict_sources"` // Reject summaries citing URLs outside the analyzed titles
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	Color         bool `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		ECFR: ECFRConfig{
			BaseURL:       "https://www.ecfr.gov/api",
			UserAgent:     "ecfr-analyzer/0.1 (+https://github.com/ppiankov/ecfr-analyzer)",
			Timeout:       10 * time.Minute,
			MaxBodyBytes:  512 << 20, // Title 40 XML is several hundred MB
			MaxRetries:    3,
			RespectRobots: false,
		},
		Cache: CacheConfig{
			Enabled:        true,
			MemoryTTL:      time.Hour,
			MemoryMaxBytes: 32 << 20,
			DiskDir:        "./.ecfr-cache",
			DiskTTL:        7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Store: StoreConfig{
			Type:       StoreSQLite,
			SQLitePath: "./ecfr-analyzer.db",
			S3Region:   "us-east-1",
			S3Prefix:   "snapshots",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AnalyzeTimeout: 2 * time.Hour,
		},
		LLM: LLMConfig{
			Model:         "gpt-4o-mini",
			Timeout:       30,
			MaxTokens:     800,
			StrictSources: true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			Color:         true,
		},
	}
}

// Validate rejects configurations that cannot run
func (c *Config) Validate() error {
	if c.ECFR.BaseURL == "" {
		return fmt.Errorf("ecfr.base_url is required")
	}
	if c.Concurrency.Workers < 1 {
		return fmt.Errorf("concurrency.workers must be at least 1, got %d", c.Concurrency.Workers)
	}
	if c.RateLimiting.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limiting.requests_per_second must be positive, got %v", c.RateLimiting.RequestsPerSecond)
	}
	if c.ECFR.MaxRetries < 1 {
		return fmt.Errorf("ecfr.max_retries must be at least 1, got %d", c.ECFR.MaxRetries)
	}

	switch c.Store.Type {
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for sqlite store")
		}
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("store.postgres_url is required for postgres store")
		}
	case StoreS3:
		if c.Store.S3Bucket == "" {
			return fmt.Errorf("store.s3_bucket is required for s3 store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store type: %s (supported: sqlite, postgres, s3, memory)", c.Store.Type)
	}

	return nil
}
