package model

import "time"

// Config is the complete tierscope configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Scrape       ScrapeConfig       `yaml:"scrape" mapstructure:"scrape"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Sites        SitesConfig        `yaml:"sites" mapstructure:"sites"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Pricing      PricingConfig      `yaml:"pricing" mapstructure:"pricing"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the scraping HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ScrapeConfig selects and configures scraping strategies
type ScrapeConfig struct {
	Strategy      string `yaml:"strategy" mapstructure:"strategy"`             // html, text, jina
	QueryStrategy string `yaml:"query_strategy" mapstructure:"query_strategy"` // strategy used by ask/evaluate
	JinaBaseURL   string `yaml:"jina_base_url" mapstructure:"jina_base_url"`
	JinaAPIKey    string `yaml:"jina_api_key,omitempty" mapstructure:"jina_api_key"`
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LLMConfig configures the completion provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model       string  `yaml:"model" mapstructure:"model"`       // empty uses the provider default
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// ExtractionConfig tunes the chunked tier extraction
type ExtractionConfig struct {
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"` // words per chunk
}

// CacheConfig configures scrape caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// SitesConfig configures the competitor site store
type SitesConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // json, sqlite
	Path   string `yaml:"path" mapstructure:"path"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig configures per-domain request throttling
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// PricingConfig configures token cost estimation
type PricingConfig struct {
	CostPerMillionTokens float64 `yaml:"cost_per_million_tokens" mapstructure:"cost_per_million_tokens"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	Color         bool `yaml:"color" mapstructure:"color"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Tierscope/0.1 (+https://github.com/ppiankov/tierscope)",
			MaxBodyBytes: 5_000_000,
		},
		Scrape: ScrapeConfig{
			Strategy:      "text",
			QueryStrategy: "jina",
			JinaBaseURL:   "https://r.jina.ai",
			RespectRobots: true,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Extraction: ExtractionConfig{
			ChunkSize: 4000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".tierscope-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Sites: SitesConfig{
			Driver: "json",
			Path:   "data/competitor_sites.json",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Pricing: PricingConfig{
			CostPerMillionTokens: 5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			Color:         true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
