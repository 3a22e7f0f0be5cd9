package domain

import (
	"errors"
	"fmt"
)

// Error roots. Every error surfaced by the core wraps exactly one of these,
// so callers classify with errors.Is.
var (
	// ErrValidation indicates bad input from the caller. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrProvider indicates an embedding or language model call failed.
	ErrProvider = errors.New("provider error")

	// ErrStorage indicates persisted data is missing or unreadable.
	ErrStorage = errors.New("storage error")
)

// ErrNotFound indicates a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Validation errors.
var (
	// ErrUnsupportedFormat indicates the upload extension is not accepted.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file type", ErrValidation)

	// ErrEmptyFile indicates an upload with no bytes.
	ErrEmptyFile = fmt.Errorf("%w: empty file", ErrValidation)

	// ErrEmptyDocument indicates no text could be extracted from the upload.
	ErrEmptyDocument = fmt.Errorf("%w: could not extract text from document", ErrValidation)

	// ErrEmptyQuestion indicates a blank question.
	ErrEmptyQuestion = fmt.Errorf("%w: question cannot be empty", ErrValidation)

	// ErrDocumentNotFound indicates an unknown document ID.
	ErrDocumentNotFound = fmt.Errorf("%w: document %w", ErrValidation, ErrNotFound)
)

// Provider errors.
var (
	// ErrProviderTimeout indicates a provider call exceeded its time bound.
	ErrProviderTimeout = fmt.Errorf("%w: timed out", ErrProvider)

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = fmt.Errorf("%w: LLM service unavailable", ErrProvider)

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = fmt.Errorf("%w: embedding service unavailable", ErrProvider)

	// ErrMalformedResponse indicates a provider answered with an unusable payload,
	// such as an embedding batch of the wrong length.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrProvider)
)

// Storage errors.
var (
	// ErrIndexNotFound indicates a document's persisted index is missing or corrupt.
	ErrIndexNotFound = fmt.Errorf("%w: index not found", ErrStorage)

	// ErrDimensionMismatch indicates a vector whose dimension differs from the index.
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch", ErrStorage)

	// ErrIndexSealed indicates a write to an index that has been sealed.
	ErrIndexSealed = fmt.Errorf("%w: index is sealed", ErrStorage)

	// ErrDecrypt indicates a stored blob failed authentication or is truncated.
	ErrDecrypt = fmt.Errorf("%w: decryption failed", ErrStorage)
)

// ErrInvalidConfig indicates configuration that cannot be used, such as a
// malformed encryption key.
var ErrInvalidConfig = errors.New("invalid configuration")
