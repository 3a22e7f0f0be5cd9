package flat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// ErrNotSealed is returned when searching an index that is still building.
var ErrNotSealed = errors.New("flat: index is not sealed")

// Index is an exact similarity index over float32 vectors.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	sealed    bool
}

// New creates an empty index in the building state.
func New() *Index {
	return &Index{}
}

// Build appends all vectors to a new index and seals it.
func Build(vectors [][]float32) (*Index, error) {
	idx := New()
	if err := idx.Add(vectors...); err != nil {
		return nil, err
	}
	idx.Seal()
	return idx, nil
}

// Add appends vectors in order. The first vector ever added fixes the
// dimension. Vectors are copied.
func (i *Index) Add(vectors ...[]float32) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.sealed {
		return domain.ErrIndexSealed
	}

	dim := i.dimension
	for n, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: vector %d is empty", domain.ErrDimensionMismatch, n)
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, n, len(v), dim)
		}
	}

	for _, v := range vectors {
		i.vectors = append(i.vectors, slices.Clone(v))
	}
	i.dimension = dim
	return nil
}

// Seal makes the index read-only and searchable. Sealing twice is a no-op.
func (i *Index) Seal() {
	i.mu.Lock()
	i.sealed = true
	i.mu.Unlock()
}

// Sealed reports whether the index has been sealed.
func (i *Index) Sealed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.sealed
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Dimension returns the vector size, or 0 for an empty index.
func (i *Index) Dimension() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dimension
}

// Search returns up to min(k, Len()) hits by descending inner product.
// An empty index returns no hits and no error.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if !i.sealed {
		return nil, ErrNotSealed
	}
	if len(i.vectors) == 0 || k <= 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != i.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(query), i.dimension)
	}

	hits := make([]driven.VectorHit, len(i.vectors))
	for pos, v := range i.vectors {
		hits[pos] = driven.VectorHit{Position: pos, Similarity: dot(query, v)}
	}

	slices.SortFunc(hits, func(a, b driven.VectorHit) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	return hits[:min(k, len(hits))], nil
}

// Vector returns a copy of the vector at position.
func (i *Index) Vector(position int) ([]float32, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if position < 0 || position >= len(i.vectors) {
		return nil, false
	}
	return slices.Clone(i.vectors[position]), true
}

func dot(a, b []float32) float64 {
	var sum float64
	for n := range a {
		sum += float64(a[n]) * float64(b[n])
	}
	return sum
}
