// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docqa/core"
)

// maxRetryDelay caps the doubling delay between attempts.
const maxRetryDelay = 30 * time.Second

// retryable reports whether a failed embedding call may succeed later.
// Cancellation and rejected input never do.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, core.ErrValidation)
}

// RetryWithBackoff calls operation up to maxAttempts times. The delay starts at
// baseDelay and doubles after every failure, up to maxRetryDelay. Errors that a
// retry cannot fix are returned at once; otherwise the last error is returned
// wrapped with the number of attempts made.
func RetryWithBackoff(ctx context.Context, operation func(ctx context.Context) error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	logger := slog.Default().With("component", "reembed")

	delay := baseDelay
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Debug("embedding succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt == maxAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}
		logger.Debug("embedding failed, retrying", "attempt", attempt, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, maxRetryDelay)
	}
}
