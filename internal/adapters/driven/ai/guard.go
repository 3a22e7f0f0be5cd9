package ai

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// DefaultBackoff is the delay before the first retry; it doubles per attempt.
const DefaultBackoff = 500 * time.Millisecond

// GuardConfig bounds provider traffic.
type GuardConfig struct {
	// RequestsPerSecond throttles calls. Zero means unlimited.
	RequestsPerSecond float64

	// Burst is the limiter bucket size (minimum 1).
	Burst int

	// MaxRetries is the number of extra attempts after a provider failure.
	MaxRetries int

	// Backoff is the first retry delay (default: 500ms).
	Backoff time.Duration
}

// GuardConfigFrom derives a guard configuration from provider settings.
func GuardConfigFrom(s domain.ProviderSettings) GuardConfig {
	return GuardConfig{
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
		MaxRetries:        s.MaxRetries,
	}
}

// Guard throttles and retries calls to a provider.
type Guard struct {
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// NewGuard creates a guard. A zero config yields a pass-through guard.
func NewGuard(cfg GuardConfig) *Guard {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &Guard{
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
	}
}

// retryable reports whether a failed call may succeed on another attempt.
// Context expiry, bad input and unusable payloads are final.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMalformedResponse):
		return false
	default:
		return true
	}
}

// call runs fn under the limiter, retrying with exponential backoff.
func call[T any](ctx context.Context, g *Guard, name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	delay := g.backoff

	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if attempt >= g.maxRetries || !retryable(err) {
			return zero, err
		}

		logger.Debug("%s attempt %d failed, retrying in %s: %v", name, attempt+1, delay, err)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

var _ driven.EmbeddingService = (*guardedEmbedding)(nil)

type guardedEmbedding struct {
	driven.EmbeddingService
	guard *Guard
}

// GuardEmbedding wraps an embedding service. Nil stays nil.
func GuardEmbedding(svc driven.EmbeddingService, cfg GuardConfig) driven.EmbeddingService {
	if svc == nil {
		return nil
	}
	return &guardedEmbedding{EmbeddingService: svc, guard: NewGuard(cfg)}
}

func (e *guardedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	return call(ctx, e.guard, "embed", func(ctx context.Context) ([]float32, error) {
		return e.EmbeddingService.Embed(ctx, text)
	})
}

func (e *guardedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return call(ctx, e.guard, "embed batch", func(ctx context.Context) ([][]float32, error) {
		return e.EmbeddingService.EmbedBatch(ctx, texts)
	})
}

var _ driven.LLMService = (*guardedLLM)(nil)

type guardedLLM struct {
	driven.LLMService
	guard *Guard
}

// GuardLLM wraps an LLM service. Nil stays nil.
func GuardLLM(svc driven.LLMService, cfg GuardConfig) driven.LLMService {
	if svc == nil {
		return nil
	}
	return &guardedLLM{LLMService: svc, guard: NewGuard(cfg)}
}

func (l *guardedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return call(ctx, l.guard, "chat", func(ctx context.Context) (string, error) {
		return l.LLMService.Chat(ctx, messages, opts)
	})
}
