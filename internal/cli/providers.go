// internal/cli/providers.go
package grounded

import (
	"github.com/mwiater/grounded/internal/appconfig"
	"github.com/mwiater/grounded/internal/providerfactory"
	"github.com/mwiater/grounded/internal/providers"
	"github.com/mwiater/grounded/internal/rag"
)

func newCapabilities(cfg appconfig.Config) (providers.Embedder, providers.Completer, error) {
	caps, err := providerfactory.New(cfg, recorder)
	if err != nil {
		return nil, nil, err
	}
	return caps.Embedder, caps.Completer, nil
}

func newPipeline(cfg appconfig.Config) (rag.Pipeline, error) {
	embedder, completer, err := newCapabilities(cfg)
	if err != nil {
		return rag.Pipeline{}, err
	}
	return rag.Pipeline{Embedder: embedder, Completer: completer, StorePath: cfg.StorePath}, nil
}
