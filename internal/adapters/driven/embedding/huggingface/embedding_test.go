package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(Config{APIKey: "hf_test", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	svc, err := NewEmbeddingService(Config{APIKey: "hf"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 384, svc.Dimensions())
}

func TestEmbedBatch_SentenceVectors(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sentence-transformers/all-MiniLM-L6-v2", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var req featureRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"pickup", "delivery"}, req.Inputs)
		assert.True(t, req.Options.WaitForModel)

		_, _ = w.Write([]byte(`[[0.1,0.2],[0.3,0.4]]`))
	})

	got, err := svc.EmbedBatch(context.Background(), []string{"pickup", "delivery"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, got)
}

func TestEmbedBatch_MeanPoolsTokenVectors(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[[1,0],[3,2]]]`))
	})

	got, err := svc.Embed(context.Background(), "rate")

	require.NoError(t, err)
	assert.Equal(t, []float32{2, 1}, got)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[0.1,0.2]]`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestEmbedBatch_ModelLoading(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20}`))
	})

	_, err := svc.Embed(context.Background(), "a")

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "Model is currently loading")
}

func TestDecodeRow_Rejects(t *testing.T) {
	for _, raw := range []string{`[]`, `[[]]`, `[[1,2],[3]]`, `"text"`} {
		_, err := decodeRow(json.RawMessage(raw))
		assert.Error(t, err, raw)
	}
}
