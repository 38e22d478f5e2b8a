package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/orderlens/internal/common"
	"github.com/Veraticus/orderlens/internal/service"
)

// RetryingClient throttles and retries calls to an underlying provider.
type RetryingClient struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewRetryingClient wraps client. requestsPerMinute of zero disables throttling.
func NewRetryingClient(client Client, opts service.RetryOptions, requestsPerMinute int, logger *slog.Logger) *RetryingClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingClient{
		client:      client,
		logger:      logger,
		rateLimiter: newRateLimiter(requestsPerMinute),
		retryOpts:   opts,
	}
}

// Complete implements Client. The returned error wraps common.ErrInferenceFailed.
func (c *RetryingClient) Complete(ctx context.Context, req Request) (string, error) {
	var reply string
	err := common.WithRetry(ctx, func() error {
		if err := c.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		out, err := c.client.Complete(ctx, req)
		if err != nil {
			return err
		}
		reply = out
		return nil
	}, c.retryOpts)

	if err != nil {
		c.logger.Error("inference failed", "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrInferenceFailed, err)
	}

	c.logger.Debug("inference succeeded", "reply_bytes", len(reply))
	return reply, nil
}
