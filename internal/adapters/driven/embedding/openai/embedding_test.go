package openai

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

	svc, err := NewEmbeddingService(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "text-embedding-3-small"})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 1536, svc.Dimensions())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req embeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"first", "second"}, req.Input)
		assert.Equal(t, 1536, req.Dimensions)

		_, _ = w.Write([]byte(`{"data":[
			{"index":1,"embedding":[0,1]},
			{"index":0,"embedding":[1,0]}
		]}`))
	})

	got, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, got)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := newTestService(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})

	got, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmbedBatch_WrongCount(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestEmbedBatch_DuplicateIndex(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]},{"index":0,"embedding":[2]}]}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestEmbedBatch_APIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	_, err := svc.Embed(context.Background(), "a")

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "bad key")
}

func TestEmbed_ContextCancelled(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, "a")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
