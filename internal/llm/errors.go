package llm

import (
	"fmt"
	"net/http"

	"github.com/Veraticus/orderlens/internal/common"
)

// statusError classifies a provider HTTP failure. Rate limiting and server
// errors are retryable, everything else is final.
func statusError(provider string, status int, body string) error {
	err := fmt.Errorf("%s API error (status %d): %s", provider, status, truncateBody(body))
	switch {
	case status == http.StatusTooManyRequests:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

func truncateBody(body string) string {
	const limit = 512
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}
