package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// UploadInput is the input schema for the upload_document tool.
type UploadInput struct {
	Path string `json:"path" jsonschema:"path of a .pdf, .docx or .txt file on the server's disk"`
}

// UploadOutput is the output schema for the upload_document tool.
type UploadOutput struct {
	DocumentID         string   `json:"document_id"`
	Filename           string   `json:"filename"`
	ChunkCount         int      `json:"chunk_count"`
	SuggestedQuestions []string `json:"suggested_questions,omitempty"`
}

// AskInput is the input schema for the ask_document tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"id returned by upload_document"`
	Question   string `json:"question" jsonschema:"natural-language question about the document"`
}

// AskOutput is the output schema for the ask_document tool.
type AskOutput struct {
	Answer          string         `json:"answer"`
	Sources         []SourceOutput `json:"sources"`
	Confidence      float64        `json:"confidence"`
	GuardrailStatus string         `json:"guardrail_status"`
}

// SourceOutput is a retrieved chunk backing an answer.
type SourceOutput struct {
	Text            string  `json:"text"`
	SimilarityScore float64 `json:"similarity_score"`
}

// ExtractInput is the input schema for the extract_shipment tool.
type ExtractInput struct {
	DocumentID string `json:"document_id" jsonschema:"id returned by upload_document"`
}

// ExtractOutput is the output schema for the extract_shipment tool.
// Data holds every shipment field; fields not found are null.
type ExtractOutput struct {
	DocumentID string         `json:"document_id"`
	Data       map[string]any `json:"data"`
	Confidence float64        `json:"confidence"`
}

// ListInput is the (empty) input schema for the list_documents tool.
type ListInput struct{}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// DocumentInfo summarises an ingested document.
type DocumentInfo struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Ingest a logistics document from a local path and index it for questions",
	}, s.handleUpload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask_document",
		Description: "Ask a question about one uploaded document. Answers are gated on retrieval " +
			"quality; check guardrail_status before trusting the answer",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_shipment",
		Description: "Extract the structured shipment record from an uploaded document",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List uploaded documents, newest first",
	}, s.handleList)
}

// handleUpload handles the upload_document tool invocation.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	if input.Path == "" {
		return nil, UploadOutput{}, errors.New("path is required")
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, UploadOutput{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}

	result, err := s.ports.Document.Upload(ctx, filepath.Base(input.Path), data)
	if err != nil {
		return nil, UploadOutput{}, err
	}

	return nil, UploadOutput{
		DocumentID:         result.DocumentID,
		Filename:           result.Filename,
		ChunkCount:         result.ChunkCount,
		SuggestedQuestions: result.SuggestedQuestions,
	}, nil
}

// handleAsk handles the ask_document tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Ask == nil {
		return nil, AskOutput{}, domain.ErrLLMUnavailable
	}

	answer, err := s.ports.Ask.Ask(ctx, input.DocumentID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:          answer.Answer,
		Sources:         make([]SourceOutput, len(answer.Sources)),
		Confidence:      answer.Confidence,
		GuardrailStatus: string(answer.GuardrailStatus),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{Text: src.Text, SimilarityScore: src.SimilarityScore}
	}

	return nil, output, nil
}

// handleExtract handles the extract_shipment tool invocation.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if s.ports.Extraction == nil {
		return nil, ExtractOutput{}, domain.ErrLLMUnavailable
	}

	result, err := s.ports.Extraction.Extract(ctx, input.DocumentID)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	data := make(map[string]any, len(domain.ShipmentFields))
	for _, key := range domain.ShipmentFields {
		if v, ok := result.Data.Get(key); ok {
			data[key] = v
		} else {
			data[key] = nil
		}
	}

	return nil, ExtractOutput{
		DocumentID: result.DocumentID,
		Data:       data,
		Confidence: result.Confidence,
	}, nil
}

// handleList handles the list_documents tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}

	return nil, ListOutput{Documents: documentInfos(docs), Count: len(docs)}, nil
}

func documentInfos(docs []domain.Document) []DocumentInfo {
	infos := make([]DocumentInfo, len(docs))
	for i := range docs {
		infos[i] = DocumentInfo{
			ID:         docs[i].ID,
			Filename:   docs[i].Filename,
			Format:     string(docs[i].Format),
			ChunkCount: docs[i].ChunkCount,
		}
		if !docs[i].CreatedAt.IsZero() {
			infos[i].CreatedAt = docs[i].CreatedAt.UTC().Format(time.RFC3339)
		}
	}
	return infos
}
