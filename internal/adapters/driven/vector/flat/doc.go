// Package flat provides an exact inner-product vector index.
// It implements the driven.VectorIndex interface.
//
// An Index starts in the building state, accepts appends, and is sealed
// before use. A sealed index is immutable and safe for concurrent readers.
// Ranking is by descending inner product with ties broken by ascending
// insertion position, so results are reproducible.
package flat
