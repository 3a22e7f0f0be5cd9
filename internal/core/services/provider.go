package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/logger"
)

// timeoutError matches transport errors that report a timeout, such as
// *url.Error from an http.Client deadline.
type timeoutError interface {
	Timeout() bool
}

// callProvider runs a provider call bounded by timeout (zero means unbounded).
// Deadline expiry surfaces as domain.ErrProviderTimeout and any other failure
// is classified under domain.ErrProvider.
func callProvider[T any](
	ctx context.Context, timeout time.Duration, stage string, fn func(context.Context) (T, error),
) (T, error) {
	var zero T

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := fn(ctx)
	logger.Timed(stage, start)
	if err == nil {
		return out, nil
	}

	if isTimeout(ctx, err) {
		return zero, fmt.Errorf("%w: %s exceeded %s: %w", domain.ErrProviderTimeout, stage, timeout, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrProvider) {
		return zero, fmt.Errorf("%s: %w", stage, err)
	}
	return zero, fmt.Errorf("%w: %s: %w", domain.ErrProvider, stage, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var te timeoutError
	return errors.As(err, &te) && te.Timeout()
}
