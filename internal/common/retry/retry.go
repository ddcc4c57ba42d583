// internal/common/retry/retry.go
// Package retry reruns operations whose failures the error taxonomy marks
// retryable. The generation client itself never retries; the flow layer
// wraps its calls with Do when a retry budget is configured.
package retry

import (
	"context"
	"time"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
)

// Do runs op, then up to maxRetries more times while the returned error
// carries a retryable code. The delay doubles per attempt starting from
// initialDelay; a done context ends the loop between attempts with the
// last error.
func Do(ctx context.Context, maxRetries int, initialDelay time.Duration, op func() error) error {
	delay := initialDelay

	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !stderrors.IsRetryableErrorCode(stderrors.CodeOf(err)) {
			return err
		}

		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return err
		}
	}
}
