package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})
	assert.Error(t, err)
}

func TestEmbedBatch_SplitsIntoBatches(t *testing.T) {
	var sizes []int
	svc := newService(Config{Model: DefaultModel}, func(_ context.Context, texts []string) ([][]float32, error) {
		sizes = append(sizes, len(texts))
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, float32(i)}
		}
		return out, nil
	})

	texts := make([]string, MaxBatch+5)
	got, err := svc.EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	assert.Len(t, got, MaxBatch+5)
	assert.Equal(t, []int{MaxBatch, 5}, sizes)
	assert.Equal(t, []float32{1, 4}, got[MaxBatch+4])
	assert.Equal(t, 768, svc.Dimensions())
}

func TestEmbedBatch_WrongCount(t *testing.T) {
	svc := newService(Config{Model: DefaultModel}, func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestEmbedBatch_EmptyVector(t *testing.T) {
	svc := newService(Config{Model: DefaultModel}, func(context.Context, []string) ([][]float32, error) {
		return [][]float32{nil}, nil
	})

	_, err := svc.Embed(context.Background(), "a")

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestEmbedBatch_ProviderError(t *testing.T) {
	svc := newService(Config{Model: DefaultModel}, func(ctx context.Context, _ []string) ([][]float32, error) {
		return nil, errors.Join(errors.New("quota exceeded"), context.DeadlineExceeded)
	})

	_, err := svc.Embed(context.Background(), "a")

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, svc.Close())
}
