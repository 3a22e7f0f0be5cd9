// Package mcp provides an MCP (Model Context Protocol) server adapter for docintel.
// It lets AI assistants upload logistics documents, ask grounded questions
// about them and extract shipment records.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
