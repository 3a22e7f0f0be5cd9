package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docintel/internal/adapters/driven/crypto"
	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/normalisers"
	"github.com/custodia-labs/docintel/internal/postprocessors"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

const rateConfirmation = `RATE CONFIRMATION

Shipment ID: SHP-20931
Carrier: Swift Haulage LLC
Pickup: 2024-03-04 08:00 at Dallas, TX

Consignee: Northwind Foods, 500 Harbor Rd, Long Beach, CA
Total weight: 42,000 lbs on a 53' dry van

Agreed rate: 2450.00 USD all-in.`

type documentFixture struct {
	svc      *DocumentService
	store    *memory.DocumentStore
	catalog  *memory.Catalog
	embedder *vocabEmbedder
	prompts  driven.PromptStore
}

func newDocumentFixture(t *testing.T, cfg DocumentConfig) *documentFixture {
	t.Helper()

	pipeline, err := postprocessors.DefaultPipeline(domain.ChunkingSettings{ChunkSize: 120, ChunkOverlap: 20})
	require.NoError(t, err)
	cipher, err := crypto.New(crypto.Config{Key: testKey})
	require.NoError(t, err)
	prompts, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)

	f := &documentFixture{
		store:    memory.NewDocumentStore(),
		catalog:  memory.NewCatalog(),
		embedder: newVocabEmbedder("shipment", "weight", "rate", "carrier", "pickup"),
		prompts:  prompts,
	}
	f.svc = NewDocumentService(f.store, f.catalog, normalisers.NewDefaultRegistry(), pipeline, f.embedder, cipher, cfg)
	f.svc.SetPromptStore(prompts)

	ids := 0
	f.svc.newID = func() string {
		ids++
		return fmt.Sprintf("doc-%d", ids)
	}
	return f
}

func TestDocumentService_Upload(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{ProviderTimeout: time.Second})
	ctx := context.Background()

	result, err := f.svc.Upload(ctx, "Rate_Confirmation.TXT", []byte(rateConfirmation))

	require.NoError(t, err)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, "Rate_Confirmation.TXT", result.Filename)
	assert.Greater(t, result.ChunkCount, 1)
	assert.Nil(t, result.SuggestedQuestions)

	assert.True(t, f.store.Exists(ctx, "doc-1"))
	index, chunks, err := f.store.LoadIndex(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, result.ChunkCount, index.Len())
	assert.Len(t, chunks, result.ChunkCount)

	doc, err := f.svc.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatText, doc.Format)
	assert.Equal(t, rateConfirmation, doc.FullText)
	assert.Equal(t, result.ChunkCount, doc.ChunkCount)

	listed, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "doc-1", listed[0].ID)
}

func TestDocumentService_Upload_StoresVectorsNormalised(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "bol.txt", []byte(rateConfirmation))
	require.NoError(t, err)

	index, _, err := f.store.LoadIndex(ctx, "doc-1")
	require.NoError(t, err)
	hits, err := index.Search(ctx, domain.Normalize(f.embedder.vector("shipment weight")), index.Len())
	require.NoError(t, err)
	for _, h := range hits {
		assert.LessOrEqual(t, h.Similarity, 1.0+1e-6)
		assert.GreaterOrEqual(t, h.Similarity, -1.0-1e-6)
	}
}

func TestDocumentService_Upload_OriginalIsEncrypted(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "bol.txt", []byte(rateConfirmation))
	require.NoError(t, err)

	blob, err := f.store.LoadOriginal(ctx, "doc-1")
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "SHP-20931")
	assert.Len(t, blob, crypto.NonceSize+len(rateConfirmation)+16)

	original, err := f.svc.Original(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, rateConfirmation, string(original))
}

func TestDocumentService_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     error
	}{
		{"unsupported extension", "manifest.csv", []byte("a,b"), domain.ErrUnsupportedFormat},
		{"no extension", "README", []byte("text"), domain.ErrUnsupportedFormat},
		{"empty payload", "empty.txt", nil, domain.ErrEmptyFile},
		{"whitespace only", "blank.txt", []byte(" \n\t\r\n "), domain.ErrEmptyDocument},
		{"corrupt docx", "broken.docx", []byte("not a zip"), domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t, DocumentConfig{})

			_, err := f.svc.Upload(context.Background(), tt.filename, tt.data)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, 0, f.embedder.callCount())
			assert.False(t, f.store.Exists(context.Background(), "doc-1"))
		})
	}
}

func TestDocumentService_Upload_EmbeddingFailureAborts(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})
	f.embedder.err = errors.New("connection refused")

	_, err := f.svc.Upload(context.Background(), "bol.txt", []byte(rateConfirmation))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.False(t, f.store.Exists(context.Background(), "doc-1"))
	listed, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDocumentService_Upload_FailureLeavesNoOriginal(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		embed error
	}{
		{"embedding fails", rateConfirmation, errors.New("connection refused")},
		{"nothing extracted", " \n\t ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t, DocumentConfig{})
			f.embedder.err = tt.embed
			ctx := context.Background()

			_, err := f.svc.Upload(ctx, "bol.txt", []byte(tt.data))
			require.Error(t, err)

			_, err = f.store.LoadOriginal(ctx, "doc-1")
			assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
			_, err = f.svc.Original(ctx, "doc-1")
			assert.Error(t, err)
		})
	}
}

func TestDocumentService_Upload_NoEmbedder(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})
	f.svc.embedder = nil

	_, err := f.svc.Upload(context.Background(), "bol.txt", []byte(rateConfirmation))

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestDocumentService_Upload_SuggestedQuestions(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{SuggestQuestions: true})
	llm := &scriptedLLM{reply: "What is the shipment ID?\n- Who is the carrier?\n\n* When is pickup?\nWhat is the rate?\nWhat is the weight?\nWhere is delivery?"}
	f.svc.SetLLMService(llm)

	long := rateConfirmation + "\n\n" + strings.Repeat("filler line of text\n", 400)
	result, err := f.svc.Upload(context.Background(), "bol.txt", []byte(long))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"What is the shipment ID?",
		"Who is the carrier?",
		"When is pickup?",
		"What is the rate?",
		"What is the weight?",
	}, result.SuggestedQuestions)

	assert.Equal(t, 0.7, llm.opts.Temperature)
	assert.Equal(t, 256, llm.opts.MaxTokens)
	msgs := llm.lastMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[1].Content, "SHP-20931")
	assert.Less(t, len(msgs[1].Content), 3000+1000)
}

func TestDocumentService_Upload_SuggestionFallbacks(t *testing.T) {
	tests := []struct {
		name string
		llm  driven.LLMService
	}{
		{"no llm", nil},
		{"llm error", &scriptedLLM{err: errors.New("503")}},
		{"blank reply", &scriptedLLM{reply: "  \n \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t, DocumentConfig{SuggestQuestions: true})
			if tt.llm != nil {
				f.svc.SetLLMService(tt.llm)
			}

			result, err := f.svc.Upload(context.Background(), "bol.txt", []byte(rateConfirmation))

			require.NoError(t, err)
			assert.Equal(t, FallbackQuestions, result.SuggestedQuestions)
		})
	}
}

func TestDocumentService_SuggestQuestions(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})
	f.svc.SetLLMService(&scriptedLLM{reply: "Who is the consignee?"})
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "bol.txt", []byte(rateConfirmation))
	require.NoError(t, err)

	questions, err := f.svc.SuggestQuestions(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Who is the consignee?"}, questions)

	_, err = f.svc.SuggestQuestions(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_GetUnknown(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})

	_, err := f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Content(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Original(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_ContentRebuiltFromChunks(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})
	ctx := context.Background()
	require.NoError(t, f.store.SaveIndex(ctx, "legacy", [][]float32{{1, 0}, {0, 1}}, []string{"first", "second"}))

	content, err := f.svc.Content(ctx, "legacy")

	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", content)
}

func TestDocumentService_ListNewestFirst(t *testing.T) {
	f := newDocumentFixture(t, DocumentConfig{})
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	f.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := f.svc.Upload(ctx, name, []byte(rateConfirmation))
		require.NoError(t, err)
	}

	docs, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"c.txt", "b.txt", "a.txt"}, []string{docs[0].Filename, docs[1].Filename, docs[2].Filename})
}

func TestSplitQuestions(t *testing.T) {
	assert.Empty(t, splitQuestions(""))
	assert.Equal(t, []string{"One?", "Two?"}, splitQuestions("- One?\r\n\n  * Two?  "))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}
