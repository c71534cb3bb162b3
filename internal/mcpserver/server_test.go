package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/grounded/internal/rag"
)

type stubPipeline struct {
	lastTopK int
	err      error
}

func (s *stubPipeline) Retrieve(_ context.Context, query string, topK int) (rag.RetrievalResult, error) {
	s.lastTopK = topK
	if s.err != nil {
		return rag.RetrievalResult{}, s.err
	}
	return rag.RetrievalResult{Results: []rag.QueryResult{
		{ID: 4, Source: "notes.md", Text: "Grounded answers cite passages.", Score: 0.93},
	}}, nil
}

func (s *stubPipeline) Ask(_ context.Context, query string, topK int) (rag.Answer, rag.RetrievalResult, error) {
	s.lastTopK = topK
	if s.err != nil {
		return rag.Answer{}, rag.RetrievalResult{}, s.err
	}
	return rag.Answer{Answer: "They cite [notes.md:4].", Citations: []string{"notes.md:4"}}, rag.RetrievalResult{}, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestSearchToolReturnsHits(t *testing.T) {
	pipeline := &stubPipeline{}
	h := toolHandlers{pipeline: pipeline, topK: 5}

	result, err := h.search(context.Background(), callRequest(map[string]any{"query": "citations", "top_k": float64(2)}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 2, pipeline.lastTopK)

	var hits []searchHit
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &hits))
	assert.Equal(t, []searchHit{{ID: 4, Source: "notes.md", Score: 0.93, Text: "Grounded answers cite passages."}}, hits)
}

func TestAnswerToolUsesDefaultTopK(t *testing.T) {
	pipeline := &stubPipeline{}
	h := toolHandlers{pipeline: pipeline, topK: 5}

	result, err := h.answer(context.Background(), callRequest(map[string]any{"query": "what?"}))
	require.NoError(t, err)
	assert.Equal(t, 5, pipeline.lastTopK)

	var answer rag.Answer
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &answer))
	assert.Equal(t, []string{"notes.md:4"}, answer.Citations)
}

func TestToolErrorsBecomeToolResults(t *testing.T) {
	h := toolHandlers{pipeline: &stubPipeline{err: errors.New("store missing")}, topK: 5}

	result, err := h.search(context.Background(), callRequest(map[string]any{"query": "x"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "store missing")

	result, err = h.answer(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestNewRegistersTools(t *testing.T) {
	assert.NotNil(t, New(&stubPipeline{}, 5, "test"))
}
