package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a generation response is read.
const maxResponseBytes = 1 << 20

// HTTPClient implements Client against a chat-completion style HTTP API.
//
// The request and response shapes follow the common
// messages-in/choices-out convention, so the client works with any
// backend exposing that surface. Calls are rate limited per client
// instance and retried with exponential backoff on transient failures.
type HTTPClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	retries  int
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithEndpoint overrides the completion endpoint URL.
func WithEndpoint(url string) HTTPOption {
	return func(c *HTTPClient) { c.endpoint = url }
}

// WithModel sets the default model.
func WithModel(model string) HTTPOption {
	return func(c *HTTPClient) { c.model = model }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.client = hc }
}

// WithRateLimit sets the minimum interval between calls.
func WithRateLimit(interval time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.limiter = rate.NewLimiter(rate.Every(interval), 1) }
}

// WithRetries sets the number of retries on transient failures.
func WithRetries(n int) HTTPOption {
	return func(c *HTTPClient) { c.retries = n }
}

// NewHTTPClient creates a generation client for the given API key.
func NewHTTPClient(apiKey string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		apiKey:   apiKey,
		model:    "gemini-pro",
		endpoint: "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions",
		client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		retries:  3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the client is configured with an API key.
func (c *HTTPClient) Available() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Complete implements Client.
func (c *HTTPClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, NewError("complete", err, false)
	}

	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("marshal request: %w", err), false)
	}

	respBody, err := c.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, NewError("complete", fmt.Errorf("parse response: %w", err), false)
	}
	if len(parsed.Choices) == 0 {
		return nil, NewError("complete", fmt.Errorf("response contained no choices"), false)
	}

	choice := parsed.Choices[0]
	return &CompletionResponse{
		Content:      choice.Message.Content,
		Model:        parsed.Model,
		FinishReason: choice.FinishReason,
		Duration:     time.Since(start),
	}, nil
}

// doWithRetry executes the request, retrying transient failures with
// exponential backoff. Honors the Retry-After header on 429 responses.
func (c *HTTPClient) doWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt, lastErr)
			select {
			case <-ctx.Done():
				return nil, NewError("complete", ctx.Err(), false)
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, NewError("complete", fmt.Errorf("create request: %w", err), false)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, NewError("complete", ctx.Err(), false)
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return respBody, nil
		}

		statusErr := &statusError{
			status:     resp.StatusCode,
			body:       string(respBody),
			retryAfter: resp.Header.Get("Retry-After"),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = statusErr
			continue
		}

		// 4xx other than 429 will not improve on retry.
		return nil, NewError("complete", statusErr, false)
	}

	// Everything that falls through here was transient: network errors,
	// truncated reads, 429s, and 5xx responses.
	return nil, NewError("complete", fmt.Errorf("after %d attempts: %w", c.retries+1, lastErr), true)
}

// statusError is a non-200 HTTP response from the generation backend.
type statusError struct {
	status     int
	body       string
	retryAfter string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("generation API error (status %d): %s", e.status, e.body)
}

// backoffDelay computes the wait before the given retry attempt.
// Exponential (1s, 2s, 4s, ...) capped at 30s, honoring Retry-After on 429.
func backoffDelay(attempt int, lastErr error) time.Duration {
	delay := time.Duration(1<<(attempt-1)) * time.Second

	if se, ok := lastErr.(*statusError); ok && se.status == http.StatusTooManyRequests && se.retryAfter != "" {
		if seconds, err := strconv.Atoi(se.retryAfter); err == nil && seconds > 0 {
			delay = time.Duration(seconds) * time.Second
		}
	}

	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
