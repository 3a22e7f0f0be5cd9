package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestServer_handleUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the file and uploads by base name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bol.txt")
		require.NoError(t, os.WriteFile(path, []byte("Shipment ID: SHP-1"), 0o600))

		docs := &mockDocumentService{upload: &domain.UploadResult{
			DocumentID:         "doc-1",
			Filename:           "bol.txt",
			ChunkCount:         1,
			SuggestedQuestions: []string{"What is the shipment ID?"},
		}}
		server, err := NewServer(&Ports{Document: docs})
		require.NoError(t, err)

		_, output, err := server.handleUpload(ctx, nil, UploadInput{Path: path})

		require.NoError(t, err)
		assert.Equal(t, "bol.txt", docs.uploadedName)
		assert.Equal(t, "Shipment ID: SHP-1", string(docs.uploadedData))
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, 1, output.ChunkCount)
		assert.Len(t, output.SuggestedQuestions, 1)
	})

	t.Run("missing path", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}})
		require.NoError(t, err)

		_, _, err = server.handleUpload(ctx, nil, UploadInput{})

		assert.Error(t, err)
	})

	t.Run("unreadable file", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}})
		require.NoError(t, err)

		_, _, err = server.handleUpload(ctx, nil, UploadInput{Path: filepath.Join(t.TempDir(), "nope.txt")})

		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("service error passes through", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o600))
		server, err := NewServer(&Ports{Document: &mockDocumentService{err: domain.ErrUnsupportedFormat}})
		require.NoError(t, err)

		_, _, err = server.handleUpload(ctx, nil, UploadInput{Path: path})

		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the answer", func(t *testing.T) {
		ask := &mockAskService{answer: &domain.Answer{
			Answer:          "42,000 lbs",
			Sources:         []domain.Source{{Text: "Total weight: 42,000 lbs", SimilarityScore: 0.812}},
			Confidence:      0.77,
			GuardrailStatus: domain.StatusGrounded,
		}}
		server, err := NewServer(&Ports{Document: &mockDocumentService{}, Ask: ask})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-1", Question: "weight?"})

		require.NoError(t, err)
		assert.Equal(t, "42,000 lbs", output.Answer)
		assert.Equal(t, "grounded", output.GuardrailStatus)
		assert.Equal(t, 0.77, output.Confidence)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, 0.812, output.Sources[0].SimilarityScore)
	})

	t.Run("refusals are not errors", func(t *testing.T) {
		ask := &mockAskService{answer: &domain.Answer{
			Answer:          "Not enough relevant context found in the document to answer this question.",
			Sources:         []domain.Source{},
			GuardrailStatus: domain.StatusRefused,
		}}
		server, err := NewServer(&Ports{Document: &mockDocumentService{}, Ask: ask})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-1", Question: "?"})

		require.NoError(t, err)
		assert.Equal(t, "refused", output.GuardrailStatus)
		assert.NotNil(t, output.Sources)
		assert.Empty(t, output.Sources)
	})

	t.Run("without ask service", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-1", Question: "?"})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("service error passes through", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Document: &mockDocumentService{},
			Ask:      &mockAskService{err: domain.ErrEmptyQuestion},
		})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-1"})

		assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
	})
}

func TestServer_handleExtract(t *testing.T) {
	ctx := context.Background()
	extraction := &mockExtractionService{result: &domain.ExtractionResult{
		DocumentID: "doc-1",
		Data:       domain.ShipmentRecord{ShipmentID: strPtr("SHP-1"), Weight: strPtr("42000")},
		Confidence: 0.9,
	}}
	server, err := NewServer(&Ports{Document: &mockDocumentService{}, Extraction: extraction})
	require.NoError(t, err)

	_, output, err := server.handleExtract(ctx, nil, ExtractInput{DocumentID: "doc-1"})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", output.DocumentID)
	assert.Equal(t, 0.9, output.Confidence)
	assert.Len(t, output.Data, len(domain.ShipmentFields))
	assert.Equal(t, "SHP-1", output.Data["shipment_id"])
	assert.Equal(t, "42000", output.Data["weight"])
	v, present := output.Data["carrier_name"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestServer_handleList(t *testing.T) {
	created := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	docs := &mockDocumentService{documents: []domain.Document{
		{ID: "doc-2", Filename: "b.pdf", Format: domain.FormatPDF, ChunkCount: 4, CreatedAt: created},
		{ID: "doc-1", Filename: "a.txt", Format: domain.FormatText, ChunkCount: 1},
	}}
	server, err := NewServer(&Ports{Document: docs})
	require.NoError(t, err)

	_, output, err := server.handleList(context.Background(), nil, ListInput{})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "doc-2", output.Documents[0].ID)
	assert.Equal(t, "pdf", output.Documents[0].Format)
	assert.Equal(t, "2024-03-04T08:00:00Z", output.Documents[0].CreatedAt)
	assert.Empty(t, output.Documents[1].CreatedAt)
}
