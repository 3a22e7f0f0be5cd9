package driving

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// ExtractionService extracts the shipment record from a document.
type ExtractionService interface {
	// Extract returns the fixed-schema record and its confidence.
	// Unparsable model output yields an all-null record, not an error.
	Extract(ctx context.Context, documentID string) (*domain.ExtractionResult, error)
}
