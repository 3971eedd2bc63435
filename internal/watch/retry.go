package watch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// withRetry runs fn up to cfg.MaxRetries+1 times with exponential
// backoff, logging each failed attempt under the operation name. A
// canceled context wins over a pending backoff.
func withRetry(ctx context.Context, op string, cfg PollerConfig, logger *zap.Logger, fn func(context.Context) error) error {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := cfg.RetryBackoff
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		logger.Debug("retrying after failure",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
