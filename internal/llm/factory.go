package llm

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/orderlens/internal/service"
)

// NewProvider creates the raw provider client without retries or rate limiting.
func NewProvider(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewClient creates a provider client wrapped with retry and rate limiting.
func NewClient(cfg Config, logger *slog.Logger) (*RetryingClient, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return NewRetryingClient(provider, retryOpts, cfg.RateLimit, logger), nil
}
