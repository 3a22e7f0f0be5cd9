package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docintel resources.
	uriScheme = "docintel://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all uploaded documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleDocumentsResource returns every uploaded document.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	data, err := json.MarshalIndent(documentInfos(docs), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns the text of a specific document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// docintel://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Document.Content(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like docintel://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
