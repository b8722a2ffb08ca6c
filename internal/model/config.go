package model

import "time"

// Config holds all caller-owned settings for the pipeline
type Config struct {
	Universe     UniverseConfig     `yaml:"universe"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Facts        FactsConfig        `yaml:"facts"`
	Resolver     ResolverConfig     `yaml:"resolver"`
	Verification VerificationConfig `yaml:"verification"`
	LLM          LLMConfig          `yaml:"llm"`
	Cache        CacheConfig        `yaml:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	RateLimiting RateLimitConfig    `yaml:"rate_limiting"`
	Output       OutputConfig       `yaml:"output"`
}

// UniverseConfig locates the company universe file
type UniverseConfig struct {
	Path string `yaml:"path"` // YAML file with companies and curated aliases
}

// CatalogConfig locates the metric catalog; empty path means built-in catalog
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// FactsConfig locates the ground-truth financial-facts store
type FactsConfig struct {
	Path string `yaml:"path"`
}

// ResolverConfig tunes ticker resolution
type ResolverConfig struct {
	FuzzyThreshold  float64 `yaml:"fuzzy_threshold"`   // Minimum similarity for fuzzy matches
	MaxWindowTokens int     `yaml:"max_window_tokens"` // Longest phrase considered a mention
}

// VerificationConfig tunes fact verification and correction
type VerificationConfig struct {
	MaxDeviationPct float64 `yaml:"max_deviation_pct"` // Tolerance before a fact is incorrect
	MinConfidence   float64 `yaml:"min_confidence"`    // Below this, strict mode rejects
	StrictMode      bool    `yaml:"strict_mode"`       // Reject instead of annotate on failure
	AutoCorrect     bool    `yaml:"auto_correct"`      // Rewrite incorrect numbers in place
}

// LLMConfig configures the answer-generation provider
type LLMConfig struct {
	Provider   string `yaml:"provider"` // "openai", "ollama", "" (offline template)
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout"` // Seconds
	MaxTokens  int    `yaml:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// CacheConfig configures caching of ground-truth lookups
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir,omitempty"` // Disk layer directory; empty disables disk layer
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitConfig throttles answer-generation requests in batch runs
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults. Callers layer config file,
// environment, and flags on top.
func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			FuzzyThreshold:  0.8,
			MaxWindowTokens: 4,
		},
		Verification: VerificationConfig{
			MaxDeviationPct: 5.0,
			MinConfidence:   0.5,
			StrictMode:      false,
			AutoCorrect:     true,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
