package httpapi

import (
	"errors"

	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("httpapi: document service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Document   driving.DocumentService
	Ask        driving.AskService
	Extraction driving.ExtractionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
