package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig - политика повторов.
type RetryConfig struct {
	MaxAttempts int
	// BaseDelay удваивается после каждой неудачной попытки.
	BaseDelay time.Duration
	// Timeout ограничивает одну попытку.
	Timeout time.Duration
}

// RetryingClient повторяет неудачные запросы с экспоненциальной задержкой.
// Ошибки аутентификации и отмена внешнего контекста не повторяются.
type RetryingClient struct {
	next   Client
	cfg    RetryConfig
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingClient оборачивает клиента политикой повторов.
func NewRetryingClient(next Client, cfg RetryConfig, logger zerolog.Logger) *RetryingClient {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingClient{
		next:   next,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Complete выполняет запрос не более MaxAttempts раз.
func (c *RetryingClient) Complete(ctx context.Context, req Request) (string, Usage, error) {
	var lastErr error
	delay := c.cfg.BaseDelay

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		text, usage, err := c.attempt(ctx, req)
		if err == nil {
			return text, usage, nil
		}
		lastErr = err

		if errors.Is(err, ErrAuthentication) {
			c.logger.Error().Err(err).Msg("AI authentication failed, not retrying")
			return "", Usage{}, err
		}
		if ctx.Err() != nil {
			return "", Usage{}, fmt.Errorf("%w: %w", ErrGenerationFailed, ctx.Err())
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		} else if errors.Is(err, ErrEmptyResponse) {
			reason = "empty_response"
		}
		aiRetriesTotal.WithLabelValues(reason).Inc()
		c.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("AI request failed, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return "", Usage{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		delay *= 2
	}

	return "", Usage{}, fmt.Errorf("ai request failed after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

func (c *RetryingClient) attempt(ctx context.Context, req Request) (string, Usage, error) {
	if c.cfg.Timeout <= 0 {
		return c.next.Complete(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return c.next.Complete(attemptCtx, req)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
