package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func TestDocumentStore_SaveAndLoadIndex(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	chunks := []string{"Consignee: Northwind", "Weight: 4200 kg"}

	require.NoError(t, store.SaveIndex(ctx, "doc-1", [][]float32{{1, 0}, {0, 1}}, chunks))
	assert.True(t, store.Exists(ctx, "doc-1"))

	idx, got, err := store.LoadIndex(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, chunks, got)

	hits, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Position)
}

func TestDocumentStore_SaveIndex_CopiesChunks(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	chunks := []string{"a"}
	require.NoError(t, store.SaveIndex(ctx, "doc-1", [][]float32{{1}}, chunks))

	chunks[0] = "mutated"

	_, got, err := store.LoadIndex(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestDocumentStore_SaveIndex_Mismatch(t *testing.T) {
	store := NewDocumentStore()

	err := store.SaveIndex(context.Background(), "doc-1", [][]float32{{1}}, nil)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestDocumentStore_LoadIndex_Missing(t *testing.T) {
	_, _, err := NewDocumentStore().LoadIndex(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestDocumentStore_GetDocument(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	require.NoError(t, store.SaveIndex(ctx, "doc-1", [][]float32{{1}, {1}}, []string{"first", "second"}))

	rebuilt, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", rebuilt.FullText)
	assert.Equal(t, 2, rebuilt.ChunkCount)

	require.NoError(t, store.PutDocument(ctx, &domain.Document{ID: "doc-1", FullText: "first second"}))

	cached, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "first second", cached.FullText)

	_, err = store.GetDocument(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentStore_Originals(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	require.NoError(t, store.SaveOriginal(ctx, "doc-1", domain.FormatText, []byte("sealed")))

	got, err := store.LoadOriginal(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), got)

	_, err = store.LoadOriginal(ctx, "doc-2")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	err = store.SaveOriginal(ctx, "doc-3", domain.Format("exe"), nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestCatalog_RecordGetList(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog()
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	require.NoError(t, cat.Record(ctx, &domain.Document{ID: "a", Filename: "a.pdf", FullText: "body", CreatedAt: older}))
	require.NoError(t, cat.Record(ctx, &domain.Document{ID: "b", Filename: "b.txt", CreatedAt: newer}))

	got, err := cat.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", got.Filename)
	assert.Empty(t, got.FullText)

	_, err = cat.Get(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err := cat.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)
}

func TestCatalog_Record_RequiresID(t *testing.T) {
	assert.ErrorIs(t, NewCatalog().Record(context.Background(), &domain.Document{}), domain.ErrValidation)
}
