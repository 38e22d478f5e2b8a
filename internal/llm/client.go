package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single system+user exchange.
type Request struct {
	// Schema, when set, asks providers that support it for a reply that
	// conforms to the schema.
	Schema *jsonschema.Schema
	System string
	User   string
}

// Config holds configuration for building a Client.
type Config struct {
	HTTPClient *http.Client
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// RateLimit is requests per minute; zero means unlimited.
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
