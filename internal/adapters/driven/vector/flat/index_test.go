package flat

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestBuild_FixesDimension(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}, {0, 1}})

	require.NoError(t, err)
	assert.Equal(t, 2, idx.Dimension())
	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Sealed())
}

func TestBuild_DimensionMismatch(t *testing.T) {
	_, err := Build([][]float32{{1, 0}, {0, 1, 0}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestAdd_RejectsEmptyVector(t *testing.T) {
	err := New().Add([]float32{})
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestAdd_AfterSealFails(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Add([]float32{1}))
	idx.Seal()

	err := idx.Add([]float32{2})
	assert.True(t, errors.Is(err, domain.ErrIndexSealed))
	assert.Equal(t, 1, idx.Len())
}

func TestAdd_MismatchLeavesIndexUnchanged(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Add([]float32{1, 0}))

	err := idx.Add([]float32{0, 1}, []float32{1})
	require.Error(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestAdd_CopiesInput(t *testing.T) {
	v := []float32{1, 0}
	idx, err := Build([][]float32{v})
	require.NoError(t, err)

	v[0] = -1
	got, ok := idx.Vector(0)
	require.True(t, ok)
	assert.Equal(t, float32(1), got[0])
}

func TestSearch_NotSealed(t *testing.T) {
	idx := New()
	_, err := idx.Search(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, ErrNotSealed)
}

func TestSearch_Empty(t *testing.T) {
	idx, err := Build(nil)
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)

	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSearch_Ranking(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 1},
		{1, 0},
		{0.6, 0.8},
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Position)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, 2, hits[1].Position)
	assert.InDelta(t, 0.6, hits[1].Similarity, 1e-6)
}

func TestSearch_TiesBreakByPosition(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 1},
		{1, 0},
		{0, 1},
		{1, 0},
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 4)

	require.NoError(t, err)
	positions := []int{hits[0].Position, hits[1].Position, hits[2].Position, hits[3].Position}
	assert.Equal(t, []int{1, 3, 0, 2}, positions)
}

func TestSearch_KLargerThanSize(t *testing.T) {
	idx, err := Build([][]float32{{1}, {0.5}, {0.25}})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1}, 10)

	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSearch_NonPositiveK(t *testing.T) {
	idx, err := Build([][]float32{{1}})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}})
	require.NoError(t, err)

	_, err = idx.Search(context.Background(), []float32{1, 0, 0}, 1)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestSearch_CancelledContext(t *testing.T) {
	idx, err := Build([][]float32{{1}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_ScoresNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	vectors := make([][]float32, 200)
	for i := range vectors {
		vectors[i] = domain.Normalize(randomVector(rng, 16))
	}
	idx, err := Build(vectors)
	require.NoError(t, err)

	for range 20 {
		query := domain.Normalize(randomVector(rng, 16))
		hits, err := idx.Search(context.Background(), query, 50)
		require.NoError(t, err)
		require.Len(t, hits, 50)
		for n := 1; n < len(hits); n++ {
			assert.GreaterOrEqual(t, hits[n-1].Similarity, hits[n].Similarity)
		}
	}
}

func TestSearch_ConcurrentReaders(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				hits, err := idx.Search(context.Background(), []float32{0, 1}, 1)
				assert.NoError(t, err)
				assert.Equal(t, 1, hits[0].Position)
			}
		}()
	}
	for range 8 {
		<-done
	}
}

func randomVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}
