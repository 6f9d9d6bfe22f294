package fs

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"
)

// implements retry with exponential backoff for rename operations,
// where network filesystems surface short-lived errors.

const (
	retryAttempts = 5
	retryBase     = 100 * time.Millisecond
)

func retry(ctx context.Context, opName string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isTransient(err) {
			return fmt.Errorf("%s failed permanently: %w", opName, err)
		}

		if attempt == retryAttempts {
			break
		}

		time.Sleep(retryBase * (1 << (attempt - 1)))
	}

	return fmt.Errorf("%s failed after %d retries: %w", opName, retryAttempts, lastErr)
}

// transient errors are worth retrying; anything else fails fast
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
