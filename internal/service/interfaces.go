// Package service defines the interfaces shared between application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/orderlens/internal/model"
)

// ResultStore persists finished pipeline results.
type ResultStore interface {
	SaveResult(ctx context.Context, source string, result *model.ProfileInferenceResult) (string, error)
	GetResult(ctx context.Context, id string) (*StoredResult, error)
	ListResults(ctx context.Context, limit int) ([]StoredResult, error)
}

// StoredResult is a pipeline result as recorded by a ResultStore.
type StoredResult struct {
	CreatedAt time.Time
	Result    *model.ProfileInferenceResult
	ID        string
	Source    string
	HasError  bool
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
