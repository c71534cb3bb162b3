// internal/metrics/provider.go
package metrics

import (
	"context"
	"time"

	"github.com/mwiater/grounded/internal/providers"
)

// Embedder is a decorator that records metrics for every embedding request.
type Embedder struct {
	wrapped  providers.Embedder
	recorder *Recorder
}

// NewEmbedder wraps an existing Embedder.
func NewEmbedder(wrapped providers.Embedder, recorder *Recorder) *Embedder {
	return &Embedder{wrapped: wrapped, recorder: recorder}
}

// Embed passes the call through and records its latency and outcome.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	start := time.Now()
	vectors, err := e.wrapped.Embed(ctx, texts)
	e.recorder.observe(CapabilityEmbed, start, err)
	return vectors, err
}

// Completer is a decorator that records metrics for every completion request.
type Completer struct {
	wrapped  providers.Completer
	recorder *Recorder
}

// NewCompleter wraps an existing Completer.
func NewCompleter(wrapped providers.Completer, recorder *Recorder) *Completer {
	return &Completer{wrapped: wrapped, recorder: recorder}
}

// Complete passes the call through and records its latency and outcome.
func (c *Completer) Complete(ctx context.Context, messages []providers.ChatMessage, temperature float64) (string, error) {
	start := time.Now()
	output, err := c.wrapped.Complete(ctx, messages, temperature)
	c.recorder.observe(CapabilityComplete, start, err)
	return output, err
}

func (r *Recorder) observe(capability string, start time.Time, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.ProviderRequests.WithLabelValues(capability, outcome).Inc()
	r.ProviderLatency.WithLabelValues(capability).Observe(time.Since(start).Seconds())
}
