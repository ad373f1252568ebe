package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: ProviderOpenAI}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = New(context.Background(), Config{Provider: "claude-on-a-toaster", APIKey: "k"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrUnknownProvider)

	c, err := New(context.Background(), Config{Provider: ProviderOllama}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &RetryingClient{}, c)

	assert.False(t, RequiresAPIKey("Ollama"))
	assert.True(t, RequiresAPIKey(ProviderGemini))
}

func TestOpenAIClientComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "cmpl-1", "object": "chat.completion", "model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"effects\":{}}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160}
		}`)
	}))
	defer srv.Close()

	c := newOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", Temperature: 0.3, MaxTokens: 500}, zerolog.Nop())
	text, usage, err := c.Complete(context.Background(), Request{SystemPrompt: "system", UserPrompt: "user"})
	require.NoError(t, err)

	assert.Equal(t, `{"effects":{}}`, text)
	assert.Equal(t, Usage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160}, usage)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.InDelta(t, 0.3, got["temperature"], 0.0001)
	assert.EqualValues(t, 500, got["max_tokens"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["content"])
}

func TestOpenAIClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"Unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, ErrAuthentication},
		{"Forbidden", http.StatusForbidden, `{"error":{"message":"nope","type":"permission"}}`, ErrAuthentication},
		{"Rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, ErrGenerationFailed},
		{"Empty choices", http.StatusOK, `{"id":"x","choices":[]}`, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini"}, zerolog.Nop())
			_, _, err := c.Complete(context.Background(), Request{SystemPrompt: "s"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRetryingOpenAIStopsOnAuth(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{
		Provider:       ProviderOpenAI,
		APIKey:         "k",
		BaseURL:        srv.URL,
		MaxAttempts:    3,
		BaseRetryDelay: time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)

	_, _, err = c.Complete(context.Background(), Request{SystemPrompt: "s"})
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, 1, calls)
}

func TestOllamaClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, false, req["stream"])
		assert.Equal(t, "json", req["format"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"llama3.1","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"{\"feedback\":\"ok\"}"},"done":true,"prompt_eval_count":30,"eval_count":12}`)
	}))
	defer srv.Close()

	c, err := newOllamaClient(Config{BaseURL: srv.URL + "/v1", Model: "llama3.1", MaxTokens: 500}, zerolog.Nop())
	require.NoError(t, err)

	text, usage, err := c.Complete(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u"})
	require.NoError(t, err)
	assert.Equal(t, `{"feedback":"ok"}`, text)
	assert.Equal(t, 42, usage.TotalTokens)
}

func TestOllamaClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"forbidden"}`)
	}))
	defer srv.Close()

	c, err := newOllamaClient(Config{BaseURL: srv.URL, Model: "llama3.1"}, zerolog.Nop())
	require.NoError(t, err)

	_, _, err = c.Complete(context.Background(), Request{SystemPrompt: "s"})
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestGeminiClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"response_type\":\"empathetic\"}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 50, "candidatesTokenCount": 10, "totalTokenCount": 60}
		}`)
	}))
	defer srv.Close()

	c, err := newGeminiClient(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, Model: "gemini-2.0-flash", MaxTokens: 500}, zerolog.Nop())
	require.NoError(t, err)

	text, usage, err := c.Complete(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u"})
	require.NoError(t, err)
	assert.Equal(t, `{"response_type":"empathetic"}`, text)
	assert.Equal(t, Usage{PromptTokens: 50, CompletionTokens: 10, TotalTokens: 60}, usage)
}
