package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/providers"
)

// Pipeline wires the persisted store to the embedding and completion capabilities.
type Pipeline struct {
	Embedder  providers.Embedder
	Completer providers.Completer
	StorePath string
}

// RetrievalResult holds ranked chunks plus retrieval telemetry.
type RetrievalResult struct {
	Results        []QueryResult
	RetrievalMs    int
	SourceCoverage int
}

// Retrieve loads the store, embeds query and returns the topK closest chunks.
func (p Pipeline) Retrieve(ctx context.Context, query string, topK int) (RetrievalResult, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		return RetrievalResult{}, apperr.Inputf("query is required")
	}
	if p.Embedder == nil {
		return RetrievalResult{}, fmt.Errorf("pipeline has no embedder")
	}

	entries, err := LoadStore(p.StorePath)
	if err != nil {
		return RetrievalResult{}, err
	}

	vectors, err := p.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return RetrievalResult{}, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return RetrievalResult{}, apperr.Provider("embed query", fmt.Errorf("%w: failed to embed query", providers.ErrMalformedResponse))
	}
	queryVec := vectors[0]

	if dim, consistent := StoreDimension(entries); len(entries) > 0 {
		if !consistent {
			logging.LogEvent("[RAG] warning: store %s mixes embedding dimensions; mismatched entries score 0", p.StorePath)
		} else if dim != len(queryVec) {
			logging.LogEvent("[RAG] warning: query embedding has %d dimensions, store has %d; all scores will be 0", len(queryVec), dim)
		}
	}

	results := Search(entries, queryVec, topK)
	_, coverage := FormatContext(results)
	elapsed := int(time.Since(start) / time.Millisecond)
	logging.LogEvent("[RAG] retrieved %d of %d entries (sources=%d) in %dms", len(results), len(entries), coverage, elapsed)

	return RetrievalResult{
		Results:        results,
		RetrievalMs:    elapsed,
		SourceCoverage: coverage,
	}, nil
}

// Ask retrieves context for query and synthesises a cited answer from it.
func (p Pipeline) Ask(ctx context.Context, query string, topK int) (Answer, RetrievalResult, error) {
	if p.Completer == nil {
		return Answer{}, RetrievalResult{}, fmt.Errorf("pipeline has no completer")
	}
	retrieval, err := p.Retrieve(ctx, query, topK)
	if err != nil {
		return Answer{}, RetrievalResult{}, err
	}
	answer, err := AnswerWithCitations(ctx, p.Completer, query, retrieval.Results)
	if err != nil {
		return Answer{}, retrieval, err
	}
	return answer, retrieval, nil
}
