// internal/providers/openai/provider.go
// Package openai implements the embedding and completion capabilities against an
// OpenAI-compatible HTTP API (api.openai.com, llama.cpp server, vLLM, ...).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mwiater/grounded/internal/appconfig"
	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/providers"
)

const (
	chatCompletionsPath = "/chat/completions"
	embeddingsPath      = "/embeddings"
)

// Provider implements providers.Embedder and providers.Completer.
type Provider struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// New constructs a Provider configured with the application's request timeout.
// A positive RequestsPerSecond paces outbound calls; zero leaves them unpaced.
func New(cfg appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false, Proxy: http.ProxyFromEnvironment},
		},
		baseURL:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.OpenAIModel,
		embedModel: cfg.OpenAIEmbedModel,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

type chatRequest struct {
	Model       string                  `json:"model"`
	Messages    []providers.ChatMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     *int      `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Complete sends messages to the chat completions endpoint and returns the first choice's content.
func (p *Provider) Complete(ctx context.Context, messages []providers.ChatMessage, temperature float64) (string, error) {
	payload := chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: temperature,
	}
	body, err := p.postJSON(ctx, chatCompletionsPath, "chat completion", p.model, payload)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperr.Provider("chat completion", fmt.Errorf("%w: decode response: %v", providers.ErrMalformedResponse, err))
	}
	if len(parsed.Choices) == 0 {
		return "", apperr.Provider("chat completion", fmt.Errorf("%w: response contained no choices", providers.ErrMalformedResponse))
	}
	content := parsed.Choices[0].Message.Content
	if content == nil || *content == "" {
		return "", apperr.Provider("chat completion", fmt.Errorf("%w: response contained no content", providers.ErrMalformedResponse))
	}
	return *content, nil
}

// Embed returns embeddings for a batch of texts, in input order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	payload := embeddingsRequest{
		Model: p.embedModel,
		Input: texts,
	}
	body, err := p.postJSON(ctx, embeddingsPath, "embeddings", p.embedModel, payload)
	if err != nil {
		return nil, err
	}

	var parsed embeddingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.Provider("embeddings", fmt.Errorf("%w: decode response: %v", providers.ErrMalformedResponse, err))
	}
	if len(parsed.Data) != len(texts) {
		return nil, apperr.Provider("embeddings", fmt.Errorf("%w: requested %d embeddings, received %d", providers.ErrMalformedResponse, len(texts), len(parsed.Data)))
	}

	vectors := make([][]float64, len(texts))
	for pos, item := range parsed.Data {
		idx := pos
		if item.Index != nil {
			idx = *item.Index
		}
		if idx < 0 || idx >= len(vectors) || vectors[idx] != nil {
			return nil, apperr.Provider("embeddings", fmt.Errorf("%w: unexpected embedding index %d", providers.ErrMalformedResponse, idx))
		}
		vectors[idx] = item.Embedding
	}
	return vectors, nil
}

// postJSON sends payload to path and returns the body of a 2xx response.
// Every failure is classified as a provider error.
func (p *Provider) postJSON(ctx context.Context, path, op, model string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.limiter.Wait(callCtx); err != nil {
		return nil, apperr.Provider(op, p.transportError(callCtx, err))
	}

	endpoint := p.baseURL + path
	logging.LogRequest("app->llm", hostIdentifier(p.baseURL), model, op, body)

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Provider(op, p.transportError(callCtx, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Provider(op, p.transportError(callCtx, err))
	}
	logging.LogRequest("llm->app", hostIdentifier(p.baseURL), model, op, respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Provider(op, providers.APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))})
	}
	return respBody, nil
}

// transportError maps deadline expiry to providers.ErrTimeout.
func (p *Provider) transportError(callCtx context.Context, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", providers.ErrTimeout, p.timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w after %s", providers.ErrTimeout, p.timeout)
	}
	return fmt.Errorf("send request: %w", err)
}

// hostIdentifier returns the host portion of a base URL for log lines.
func hostIdentifier(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return baseURL
	}
	return parsed.Host
}
