package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scrumpilot/internal/config"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithHTTP(config.ModelConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		ChatModel:      "test-chat",
		EmbeddingModel: "test-embed",
		Timeout:        5 * time.Second,
	}, srv.Client(), zerolog.Nop())
}

func chatJSON(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	t.Run("returns first choice content", func(t *testing.T) {
		t.Parallel()
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-chat", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)

			_, _ = w.Write([]byte(chatJSON("the answer")))
		}))

		got, err := c.Complete(context.Background(), "system prompt", "user prompt")
		require.NoError(t, err)
		assert.Equal(t, "the answer", got)
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		t.Parallel()
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))

		_, err := c.Complete(context.Background(), "", "prompt")
		require.ErrorIs(t, err, errors.ErrModelEmptyResponse)
	})

	t.Run("client error does not retry", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))

		_, err := c.Complete(context.Background(), "", "prompt")
		require.ErrorIs(t, err, errors.ErrModelCall)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("server error retries then succeeds", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(chatJSON("recovered")))
		}))

		got, err := c.Complete(context.Background(), "", "prompt")
		require.NoError(t, err)
		assert.Equal(t, "recovered", got)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestClient_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns vector", func(t *testing.T) {
		t.Parallel()
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/embeddings", r.URL.Path)

			var req embeddingsRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-embed", req.Model)
			assert.Equal(t, []string{"some text"}, req.Input)

			_, _ = w.Write([]byte(`{"data":[{"embedding":[0.25,0.5,0.75]}]}`))
		}))

		vec, err := c.Embed(context.Background(), "some text")
		require.NoError(t, err)
		assert.Equal(t, []float64{0.25, 0.5, 0.75}, vec)
	})

	t.Run("empty data is an error", func(t *testing.T) {
		t.Parallel()
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))

		_, err := c.Embed(context.Background(), "some text")
		require.ErrorIs(t, err, errors.ErrModelEmptyResponse)
	})
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, isRetryable(&transientError{err: errors.ErrModelCall}))
	assert.False(t, isRetryable(errors.ErrModelCall))
	assert.False(t, isRetryable(nil))
}
