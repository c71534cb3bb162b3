// internal/providers/provider.go

// Package providers defines the model capabilities the retrieval pipeline consumes.
// Implementations turn text into embedding vectors and conversations into
// completions; callers never see transport details beyond the errors declared here.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Roles used in a ChatMessage.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a chat conversation.
// It contains the role of the message sender (e.g., "user", "assistant") and the message content.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder converts text into embedding vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order. An empty input
	// yields an empty result without contacting the provider.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Completer produces a completion for a conversation.
type Completer interface {
	// Complete returns the assistant content for messages. An empty or absent
	// content field in a successful response is reported as ErrMalformedResponse.
	Complete(ctx context.Context, messages []ChatMessage, temperature float64) (string, error)
}

// EmbedderFunc adapts a function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, texts []string) ([][]float64, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return f(ctx, texts)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, messages []ChatMessage, temperature float64) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, messages []ChatMessage, temperature float64) (string, error) {
	return f(ctx, messages, temperature)
}

var (
	// ErrTimeout is reported when a provider call exceeds its deadline.
	ErrTimeout = errors.New("provider request timed out")
	// ErrMalformedResponse is reported when a success response lacks the expected content.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// APIError wraps non-2xx responses from provider APIs.
type APIError struct {
	StatusCode int
	Body       string
}

func (err APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", err.StatusCode, err.Body)
}

// IsRetryable reports whether a caller may reasonably retry the failed call.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}
