package driven

import "context"

// VectorIndex is a sealed, read-only similarity index over one document's chunks.
// Safe for concurrent readers.
type VectorIndex interface {
	// Search returns up to k hits ranked by descending inner product,
	// ties broken by ascending position. An empty index yields no hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the vector size, or 0 for an empty index.
	Dimension() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the chunk position the vector was added at.
	Position int

	// Similarity is the inner product with the query.
	Similarity float64
}
