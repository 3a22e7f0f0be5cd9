package driving

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// AskService answers questions about a single document with guardrails.
type AskService interface {
	// Ask retrieves relevant chunks, gates on retrieval quality, generates an
	// answer and classifies the combined confidence.
	// Refusals are returned as answers, not errors.
	Ask(ctx context.Context, documentID, question string) (*domain.Answer, error)
}
