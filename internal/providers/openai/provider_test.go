// internal/providers/openai/provider_test.go
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mwiater/grounded/internal/appconfig"
	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/providers"
)

func testConfig(url string) appconfig.Config {
	return appconfig.Config{
		OpenAIAPIKey:     "sk-test",
		OpenAIBaseURL:    url,
		OpenAIModel:      "chat-model",
		OpenAIEmbedModel: "embed-model",
		TimeoutSeconds:   5,
	}
}

// TestCompleteSendsConversation verifies the request shape and the extracted content.
func TestCompleteSendsConversation(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer server.Close()

	provider := New(testConfig(server.URL))
	out, err := provider.Complete(context.Background(), []providers.ChatMessage{
		{Role: providers.RoleSystem, Content: "be brief"},
		{Role: providers.RoleUser, Content: "hi"},
	}, 0)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "hello there" {
		t.Fatalf("unexpected content: %q", out)
	}
	if captured["model"] != "chat-model" {
		t.Fatalf("expected chat model, got %v", captured["model"])
	}
	if temp, ok := captured["temperature"].(float64); !ok || temp != 0 {
		t.Fatalf("expected explicit temperature 0, got %v", captured["temperature"])
	}
	msgs, ok := captured["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("expected two messages, got %v", captured["messages"])
	}
}

func TestCompleteEmptyContentIsMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null}}]}`))
	}))
	defer server.Close()

	_, err := New(testConfig(server.URL)).Complete(context.Background(), nil, 0.2)
	if !errors.Is(err, providers.ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
	if !apperr.Is(err, apperr.KindProvider) {
		t.Fatalf("expected provider kind, got %v", err)
	}
}

func TestCompleteNonSuccessCarriesStatusAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer server.Close()

	_, err := New(testConfig(server.URL)).Complete(context.Background(), nil, 0.2)
	var apiErr providers.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Body != `{"error":"overloaded"}` {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !providers.IsRetryable(err) {
		t.Fatal("expected 503 to be retryable")
	}
}

func TestCompleteTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig(server.URL)
	cfg.TimeoutSeconds = 0.05
	start := time.Now()
	_, err := New(cfg).Complete(context.Background(), nil, 0.2)
	if !errors.Is(err, providers.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !apperr.Is(err, apperr.KindProvider) || !providers.IsRetryable(err) {
		t.Fatalf("expected retryable provider error, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout was not enforced promptly")
	}
}

// TestEmbedOrdersByIndex verifies vectors are returned in input order even when
// the provider lists them out of order.
func TestEmbedOrdersByIndex(t *testing.T) {
	t.Parallel()

	var captured embeddingsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	vectors, err := New(testConfig(server.URL)).Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if captured.Model != "embed-model" || len(captured.Input) != 2 {
		t.Fatalf("unexpected request: %+v", captured)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedCountMismatchIsMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	_, err := New(testConfig(server.URL)).Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, providers.ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestEmbedEmptyInputSkipsRequest(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	vectors, err := New(testConfig(server.URL)).Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vectors) != 0 || called {
		t.Fatalf("expected no request and no vectors, got %v (called=%v)", vectors, called)
	}
}

func TestHostIdentifier(t *testing.T) {
	if got := hostIdentifier("https://api.openai.com/v1"); got != "api.openai.com" {
		t.Fatalf("unexpected host: %s", got)
	}
	if got := hostIdentifier("not a url"); got != "not a url" {
		t.Fatalf("unexpected fallback: %s", got)
	}
}
