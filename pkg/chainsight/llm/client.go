// Package llm defines the text generation capability consumed by the
// analysis engine, plus a production HTTP implementation and a mock for
// tests.
//
// The analyzer only depends on the Client interface. Any error returned
// by a Client is a service failure: the analyzer treats it exactly like
// an unparsable response and falls back to deterministic annotation, so
// implementations are free to be as unreliable as their backends.
package llm

import (
	"context"
	"time"
)

// Client is the text generation capability.
type Client interface {
	// Complete sends a prompt to the generation backend and returns the
	// raw response text. Failures are returned as *Error.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest configures a generation call.
type CompletionRequest struct {
	// SystemPrompt is an optional instruction prepended to the exchange.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Prompt is the user prompt.
	Prompt string `json:"prompt"`

	// Model overrides the client's default model when non-empty.
	Model string `json:"model,omitempty"`

	// MaxTokens caps the response length when > 0.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature,omitempty"`
}

// CompletionResponse is the output of a generation call.
type CompletionResponse struct {
	// Content is the raw response text. It is free-form: callers must
	// not assume any structure beyond what they can extract themselves.
	Content string `json:"content"`

	// Model is the model that produced the response, if known.
	Model string `json:"model,omitempty"`

	// FinishReason reports why generation stopped ("stop", "length", ...).
	FinishReason string `json:"finish_reason,omitempty"`

	// Duration is the wall-clock time of the call.
	Duration time.Duration `json:"duration"`
}
