package llm_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsight-ai/chainsight/pkg/chainsight/llm"
)

// completionsHandler returns an OpenAI-style completion response with
// the given content.
func completionsHandler(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["messages"])

		resp := map[string]any{
			"model": "test-model",
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(url string) *llm.HTTPClient {
	return llm.NewHTTPClient("test-key",
		llm.WithEndpoint(url),
		llm.WithRateLimit(time.Nanosecond),
		llm.WithRetries(1),
	)
}

func TestHTTPClient_Complete(t *testing.T) {
	srv := httptest.NewServer(completionsHandler(t, "analysis text"))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "analyze"})

	require.NoError(t, err)
	assert.Equal(t, "analysis text", resp.Content)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestHTTPClient_SystemPromptSent(t *testing.T) {
	var gotRoles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		_ = json.Unmarshal(body, &req)
		for _, m := range req.Messages {
			gotRoles = append(gotRoles, m.Role)
		}
		completionsHandler(t, "ok")(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "be terse",
		Prompt:       "analyze",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"system", "user"}, gotRoles)
}

func TestHTTPClient_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily overloaded", http.StatusServiceUnavailable)
			return
		}
		completionsHandler(t, "recovered")(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "analyze"})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_AuthErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid API key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "analyze"})

	require.Error(t, err)
	var svcErr *llm.Error
	require.ErrorAs(t, err, &svcErr)
	assert.False(t, svcErr.Retryable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_ExhaustedRetriesIsRetryableError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := llm.NewHTTPClient("test-key",
		llm.WithEndpoint(srv.URL),
		llm.WithRateLimit(time.Nanosecond),
		llm.WithRetries(0),
	)
	_, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "analyze"})

	require.Error(t, err)
	assert.True(t, llm.IsRetryable(err))
}

func TestHTTPClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "analyze"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(completionsHandler(t, "never delivered"))
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, llm.CompletionRequest{Prompt: "analyze"})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClient_Available(t *testing.T) {
	assert.True(t, llm.NewHTTPClient("key").Available())
	assert.False(t, llm.NewHTTPClient("").Available())
}
