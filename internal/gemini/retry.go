package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   4 * time.Second,
	}
}

// retryOperation retries only transient failures: network errors, 429 and 5xx.
func retryOperation(ctx context.Context, config RetryConfig, logger *logrus.Logger, operation func() error) error {
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}

		var gerr *Error
		if !errors.As(err, &gerr) || !gerr.Retryable() {
			return err
		}

		if attempt >= config.MaxRetries {
			if config.MaxRetries == 0 {
				return err
			}
			return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, err)
		}

		delay := time.Duration(float64(config.BaseDelay) * math.Pow(1.5, float64(attempt)))
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}

		logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
			"kind":    gerr.Kind,
			"status":  gerr.Status,
		}).Warn("Retrying Gemini operation")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
