package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/orderlens/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("nil context")
	ErrEmptyString   = errors.New("empty string parameter")
	ErrNilParameter  = errors.New("nil parameter")
	ErrInvalidResult = errors.New("invalid result")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResult rejects results no pipeline run produces: a raw reply is
// only kept alongside an error, and every recommendation has a link.
func validateResult(result *model.ProfileInferenceResult) error {
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if !result.Failed() && result.RawResponse != "" {
		return fmt.Errorf("%w: raw response without an error", ErrInvalidResult)
	}
	for i, rec := range result.Recommendations {
		if rec.URL == "" {
			return fmt.Errorf("%w: recommendation %d has no url", ErrInvalidResult, i)
		}
	}
	return nil
}
