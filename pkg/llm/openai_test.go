package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *OpenAIGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAIGateway(OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}, quietLogger())
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			},
		},
	})
	return string(body)
}

func TestOpenAIComplete(t *testing.T) {
	var gotBody map[string]interface{}
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("  Halo  ")))
	})

	out, err := gw.Complete(context.Background(), "system prompt", "user prompt", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "Halo", out, "response is trimmed")

	assert.Equal(t, "test-model", gotBody["model"])
	assert.InDelta(t, 0.4, gotBody["temperature"].(float64), 1e-9)

	messages := gotBody["messages"].([]interface{})
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "system prompt", first["content"])
}

func TestOpenAIEmptyResponse(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
		})

		_, err := gw.Complete(context.Background(), "s", "u", 0.4)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("blank content", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionBody("   ")))
		})

		_, err := gw.Complete(context.Background(), "s", "u", 0.4)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestOpenAIBackendError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	})

	_, err := gw.Complete(context.Background(), "s", "u", 0.4)
	require.Error(t, err)

	var backendErr *BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "openai", backendErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, backendErr.Status)
}
