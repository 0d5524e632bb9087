package gateway

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/veloxpay/velox/utils"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
	Retryable   func(Failure) bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxJitter:   time.Second,
		Retryable:   IsRetryable,
	}
}

// SendWithRetry drives one logical processor call through bounded retry.
// Attempts are strictly sequential; only failures the classifier marks
// retryable are reissued, and the final error is handed back unchanged.
func SendWithRetry(ctx context.Context, cfg RetryConfig, correlationID string, send func() (json.RawMessage, error)) (json.RawMessage, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Retryable == nil {
		cfg.Retryable = IsRetryable
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		reply, err := send()
		if err == nil {
			if attempt > 1 {
				utils.Info(ctx, "gateway call succeeded after retry", map[string]interface{}{
					"correlation_id": correlationID,
					"attempt":        attempt,
				})
			}
			return reply, nil
		}

		lastErr = err
		failure := DescribeFailure(err)
		willRetry := cfg.Retryable(failure) && attempt < cfg.MaxAttempts

		utils.Warn(ctx, "gateway call failed", map[string]interface{}{
			"correlation_id": correlationID,
			"attempt":        attempt,
			"error":          failure.Message,
			"will_retry":     willRetry,
		})

		if !willRetry {
			return nil, lastErr
		}

		delay := backoffDelay(cfg, attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// backoffDelay is base * 2^(attempt-1) plus uniform jitter.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay << uint(attempt-1)
	if cfg.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(cfg.MaxJitter)))
	}
	return delay
}
