package mcp

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	upload    *domain.UploadResult
	err       error

	uploadedName string
	uploadedData []byte
}

func (m *mockDocumentService) Upload(_ context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	m.uploadedName = filename
	m.uploadedData = data
	return m.upload, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Content(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Original(_ context.Context, _ string) ([]byte, error) {
	return m.uploadedData, m.err
}

func (m *mockDocumentService) SuggestQuestions(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAskService) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	result *domain.ExtractionResult
	err    error
}

func (m *mockExtractionService) Extract(_ context.Context, _ string) (*domain.ExtractionResult, error) {
	return m.result, m.err
}

func strPtr(s string) *string { return &s }
