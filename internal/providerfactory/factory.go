// internal/providerfactory/factory.go
package providerfactory

import (
	"github.com/mwiater/grounded/internal/appconfig"
	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/metrics"
	"github.com/mwiater/grounded/internal/providers"
	"github.com/mwiater/grounded/internal/providers/openai"
)

// Capabilities bundles the embedding and completion clients used by a command.
type Capabilities struct {
	Embedder  providers.Embedder
	Completer providers.Completer
}

// New configures the OpenAI-compatible client for cfg and, when recorder is
// non-nil, wraps both capabilities with metrics collection. It fails with a
// ConfigError when no API key is configured.
func New(cfg appconfig.Config, recorder *metrics.Recorder) (Capabilities, error) {
	if err := cfg.RequireOpenAI(); err != nil {
		return Capabilities{}, err
	}

	client := openai.New(cfg)
	logging.LogEvent("[PROVIDER] %s (chat=%s, embeddings=%s, timeout=%s)",
		cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIEmbedModel, cfg.RequestTimeout())

	caps := Capabilities{Embedder: client, Completer: client}
	if recorder != nil {
		caps.Embedder = metrics.NewEmbedder(client, recorder)
		caps.Completer = metrics.NewCompleter(client, recorder)
	}
	return caps, nil
}
