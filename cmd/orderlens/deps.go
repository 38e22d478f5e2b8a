package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/orderlens/internal/config"
	"github.com/Veraticus/orderlens/internal/llm"
	"github.com/Veraticus/orderlens/internal/orders"
	"github.com/Veraticus/orderlens/internal/pipeline"
	"github.com/Veraticus/orderlens/internal/recommend"
	"github.com/Veraticus/orderlens/internal/storage"
)

// runOptions selects how a pipeline is assembled for one command.
type runOptions struct {
	noCache   bool
	ephemeral bool
}

func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// openStorage opens the database and brings its schema up to date.
func openStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.Path, storage.WithReplyTTL(cfg.LLM.CacheTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// createLLMClient builds the provider client with retries and rate limiting.
func createLLMClient(cfg config.Config) (*llm.RetryingClient, error) {
	if err := cfg.LLM.RequireAPIKey(); err != nil {
		return nil, err
	}
	return llm.NewClient(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
		RetryDelay:  cfg.LLM.RetryDelay,
		RateLimit:   cfg.LLM.RateLimit,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, slog.Default())
}

func createResolver(cfg config.Config) *recommend.Resolver {
	if cfg.Lookup.Disabled {
		return recommend.NewResolver(nil, nil)
	}
	links := recommend.NewDuckDuckGoLinks(recommend.DuckDuckGoConfig{
		Timeout:   cfg.Lookup.LinkTimeout,
		RateLimit: cfg.Lookup.RateLimit,
	})
	images := recommend.NewUnsplashImages(recommend.UnsplashConfig{
		AccessKey: cfg.Lookup.UnsplashKey,
		Timeout:   cfg.Lookup.ImageTimeout,
		RateLimit: cfg.Lookup.RateLimit,
	})
	return recommend.NewResolver(links, images)
}

func createNormalizer(cfg config.Config) *orders.Normalizer {
	return orders.NewNormalizer(cfg.Pipeline.DedupWindow, orders.NewAddressSimplifier(cfg.Pipeline.CountryNoise))
}

// buildPipeline wires the configured services together. The returned cleanup
// releases the database and any in-memory cache.
func buildPipeline(ctx context.Context, cfg config.Config, opts runOptions) (*pipeline.Pipeline, func(), error) {
	client, err := createLLMClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(slog.Default()),
		pipeline.WithNormalizer(createNormalizer(cfg)),
		pipeline.WithMaxLines(cfg.Pipeline.MaxLines),
		pipeline.WithStructuredOutput(cfg.LLM.StructuredOutput),
	}

	var completer llm.Client = client
	cleanup := func() {}

	if opts.ephemeral {
		if !opts.noCache {
			cache := llm.NewMemoryCache(cfg.LLM.CacheTTL)
			completer = llm.NewCachingClient(client, cache, slog.Default())
			cleanup = cache.Close
		}
	} else {
		store, err := openStorage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		pipelineOpts = append(pipelineOpts, pipeline.WithStore(store))
		if !opts.noCache {
			completer = llm.NewCachingClient(client, store, slog.Default())
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close database", "error", err)
			}
		}
	}

	return pipeline.New(completer, createResolver(cfg), pipelineOpts...), cleanup, nil
}
