package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/orderlens/internal/common"
)

// Config is the resolved application configuration.
type Config struct {
	Storage  StorageConfig
	LLM      LLMConfig
	Lookup   LookupConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
}

// LLMConfig configures the inference provider.
type LLMConfig struct {
	Provider         string
	Model            string
	APIKey           string
	BaseURL          string
	Timeout          time.Duration
	RetryDelay       time.Duration
	CacheTTL         time.Duration
	Temperature      float64
	MaxRetries       int
	MaxTokens        int
	RateLimit        int
	StructuredOutput bool
}

// PipelineConfig configures normalization and prompt bounds.
type PipelineConfig struct {
	CountryNoise []string
	DedupWindow  time.Duration
	MaxLines     int
	Concurrency  int
}

// LookupConfig configures the link and image lookup services.
type LookupConfig struct {
	UnsplashKey  string
	LinkTimeout  time.Duration
	ImageTimeout time.Duration
	RateLimit    float64
	Disabled     bool
}

// StorageConfig configures the SQLite database.
type StorageConfig struct {
	Path string
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.rate_limit", 0)
	v.SetDefault("llm.structured_output", false)
	v.SetDefault("llm.cache_ttl", 24*time.Hour)

	v.SetDefault("pipeline.dedup_window", 30*24*time.Hour)
	v.SetDefault("pipeline.max_lines", 500)
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.country_noise", []string{"united states of america", "united states"})

	v.SetDefault("lookup.link_timeout", 5*time.Second)
	v.SetDefault("lookup.image_timeout", 4*time.Second)
	v.SetDefault("lookup.rate_limit", 1.0)
	v.SetDefault("lookup.disabled", false)

	v.SetDefault("storage.path", "~/.config/orderlens/orderlens.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the configuration from v, falling back to the conventional
// provider environment variables for credentials.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LLM: LLMConfig{
			Provider:         strings.ToLower(v.GetString("llm.provider")),
			Model:            v.GetString("llm.model"),
			APIKey:           v.GetString("llm.api_key"),
			BaseURL:          v.GetString("llm.base_url"),
			Timeout:          v.GetDuration("llm.timeout"),
			RetryDelay:       v.GetDuration("llm.retry_delay"),
			CacheTTL:         v.GetDuration("llm.cache_ttl"),
			Temperature:      v.GetFloat64("llm.temperature"),
			MaxRetries:       v.GetInt("llm.max_retries"),
			MaxTokens:        v.GetInt("llm.max_tokens"),
			RateLimit:        v.GetInt("llm.rate_limit"),
			StructuredOutput: v.GetBool("llm.structured_output"),
		},
		Pipeline: PipelineConfig{
			CountryNoise: v.GetStringSlice("pipeline.country_noise"),
			DedupWindow:  v.GetDuration("pipeline.dedup_window"),
			MaxLines:     v.GetInt("pipeline.max_lines"),
			Concurrency:  v.GetInt("pipeline.concurrency"),
		},
		Lookup: LookupConfig{
			UnsplashKey:  v.GetString("lookup.unsplash_key"),
			LinkTimeout:  v.GetDuration("lookup.link_timeout"),
			ImageTimeout: v.GetDuration("lookup.image_timeout"),
			RateLimit:    v.GetFloat64("lookup.rate_limit"),
			Disabled:     v.GetBool("lookup.disabled"),
		},
		Storage: StorageConfig{
			Path: ExpandPath(v.GetString("storage.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKeyFromEnv(cfg.LLM.Provider)
	}
	if cfg.Lookup.UnsplashKey == "" {
		cfg.Lookup.UnsplashKey = os.Getenv("UNSPLASH_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with. Credentials are not
// checked here because commands like narrate never need them.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	if c.Pipeline.DedupWindow <= 0 {
		return fmt.Errorf("%w: pipeline.dedup_window must be positive", common.ErrInvalidConfig)
	}
	if c.Pipeline.MaxLines <= 0 {
		return fmt.Errorf("%w: pipeline.max_lines must be positive", common.ErrInvalidConfig)
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("%w: pipeline.concurrency must be positive", common.ErrInvalidConfig)
	}
	if c.LLM.MaxRetries < 0 || c.LLM.RateLimit < 0 || c.Lookup.RateLimit < 0 {
		return fmt.Errorf("%w: retry and rate limit settings cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// RequireAPIKey reports a missing credential for the configured provider.
func (c LLMConfig) RequireAPIKey() error {
	if c.APIKey != "" {
		return nil
	}
	return fmt.Errorf("%w: %s API key not found in llm.api_key or %s",
		common.ErrMissingConfig, c.Provider, providerKeyEnv(c.Provider))
}

func providerKeyEnv(provider string) string {
	if provider == "anthropic" {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func providerKeyFromEnv(provider string) string {
	return os.Getenv(providerKeyEnv(provider))
}
