package ai

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

type flakyEmbedding struct {
	failures int
	err      error
	calls    atomic.Int32
}

func (f *flakyEmbedding) Embed(ctx context.Context, _ string) ([]float32, error) {
	if int(f.calls.Add(1)) <= f.failures {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func (f *flakyEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if int(f.calls.Add(1)) <= f.failures {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *flakyEmbedding) Dimensions() int                { return 2 }
func (f *flakyEmbedding) ModelName() string              { return "flaky" }
func (f *flakyEmbedding) Ping(ctx context.Context) error { return nil }
func (f *flakyEmbedding) Close() error                   { return nil }

type flakyLLM struct {
	failures int
	err      error
	calls    atomic.Int32
}

func (f *flakyLLM) Chat(ctx context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if int(f.calls.Add(1)) <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func (f *flakyLLM) ModelName() string              { return "flaky-llm" }
func (f *flakyLLM) Ping(ctx context.Context) error { return nil }
func (f *flakyLLM) Close() error                   { return nil }

var errUpstream = fmt.Errorf("%w: upstream 503", domain.ErrProvider)

func TestGuardEmbedding_Nil(t *testing.T) {
	assert.Nil(t, GuardEmbedding(nil, GuardConfig{}))
	assert.Nil(t, GuardLLM(nil, GuardConfig{}))
}

func TestGuardEmbedding_RetriesProviderErrors(t *testing.T) {
	inner := &flakyEmbedding{failures: 2, err: errUpstream}
	svc := GuardEmbedding(inner, GuardConfig{MaxRetries: 2, Backoff: time.Millisecond})

	vec, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, int32(3), inner.calls.Load())
	assert.Equal(t, "flaky", svc.ModelName())
	assert.Equal(t, 2, svc.Dimensions())
}

func TestGuardEmbedding_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &flakyEmbedding{failures: 5, err: errUpstream}
	svc := GuardEmbedding(inner, GuardConfig{MaxRetries: 1, Backoff: time.Millisecond})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestGuardEmbedding_ZeroConfigIsSingleAttempt(t *testing.T) {
	inner := &flakyEmbedding{failures: 1, err: errUpstream}
	svc := GuardEmbedding(inner, GuardConfig{})

	_, err := svc.Embed(context.Background(), "x")

	require.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestGuard_DoesNotRetryFinalErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"validation", domain.ErrEmptyQuestion},
		{"malformed response", fmt.Errorf("%w: 2 vectors for 3 inputs", domain.ErrMalformedResponse)},
		{"deadline", fmt.Errorf("openai: request failed: %w", context.DeadlineExceeded)},
		{"canceled", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &flakyLLM{failures: 3, err: tt.err}
			svc := GuardLLM(inner, GuardConfig{MaxRetries: 3, Backoff: time.Millisecond})

			_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err))
			assert.Equal(t, int32(1), inner.calls.Load())
		})
	}
}

func TestGuardLLM_RetriesThenSucceeds(t *testing.T) {
	inner := &flakyLLM{failures: 1, err: errUpstream}
	svc := GuardLLM(inner, GuardConfig{MaxRetries: 1, Backoff: time.Millisecond})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "flaky-llm", svc.ModelName())
}

func TestGuard_BackoffHonoursContext(t *testing.T) {
	inner := &flakyLLM{failures: 10, err: errUpstream}
	svc := GuardLLM(inner, GuardConfig{MaxRetries: 5, Backoff: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Chat(ctx, nil, driven.ChatOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestGuard_RateLimitSpacesCalls(t *testing.T) {
	inner := &flakyLLM{}
	svc := GuardLLM(inner, GuardConfig{RequestsPerSecond: 20, Burst: 1})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
		require.NoError(t, err)
	}

	// Burst of one admits the first call; the next two wait ~50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestGuardConfigFrom(t *testing.T) {
	cfg := GuardConfigFrom(domain.ProviderSettings{RequestsPerSecond: 2, Burst: 4, MaxRetries: 3})

	assert.Equal(t, GuardConfig{RequestsPerSecond: 2, Burst: 4, MaxRetries: 3}, cfg)
}
