package mcp

import (
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document ingests and lists documents.
	Document driving.DocumentService

	// Ask answers questions about a document.
	Ask driving.AskService

	// Extraction extracts shipment records.
	Extraction driving.ExtractionService
}

// Validate ensures all required ports are set.
// Ask and Extraction are optional; their tools report an error when absent.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
