// internal/mcpserver/server.go
// Package mcpserver exposes retrieval and grounded answering as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/rag"
)

// Pipeline is the part of rag.Pipeline the tools need.
type Pipeline interface {
	Retrieve(ctx context.Context, query string, topK int) (rag.RetrievalResult, error)
	Ask(ctx context.Context, query string, topK int) (rag.Answer, rag.RetrievalResult, error)
}

type toolHandlers struct {
	pipeline Pipeline
	topK     int
}

type searchHit struct {
	ID     int     `json:"id"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// New builds an MCP server with the "search" and "rag_answer" tools. topK is
// used when a call does not pass top_k.
func New(pipeline Pipeline, topK int, version string) *server.MCPServer {
	h := toolHandlers{pipeline: pipeline, topK: topK}

	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Return the indexed passages most similar to a query, highest score first"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of passages to return"),
		),
	)
	answerTool := mcp.NewTool("rag_answer",
		mcp.WithDescription("Answer a question from the indexed documents with [source:id] citations"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Question to answer"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of passages to use as context"),
		),
	)

	srv := server.NewMCPServer("grounded", version, server.WithToolCapabilities(false))
	srv.AddTool(searchTool, h.search)
	srv.AddTool(answerTool, h.answer)
	return srv
}

// ServeStdio runs srv on stdin/stdout until the client disconnects.
func ServeStdio(srv *server.MCPServer) error {
	logging.LogEvent("[MCP] serving tools on stdio")
	if err := server.ServeStdio(srv); err != nil {
		return fmt.Errorf("serve mcp stdio: %w", err)
	}
	return nil
}

func (h toolHandlers) search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := request.GetInt("top_k", h.topK)
	logging.LogEvent("[MCP] search top_k=%d", topK)

	retrieval, err := h.pipeline.Retrieve(ctx, query, topK)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hits := make([]searchHit, 0, len(retrieval.Results))
	for _, r := range retrieval.Results {
		hits = append(hits, searchHit{ID: r.ID, Source: r.Source, Score: r.Score, Text: r.Text})
	}
	raw, err := json.Marshal(hits)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (h toolHandlers) answer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := request.GetInt("top_k", h.topK)
	logging.LogEvent("[MCP] rag_answer top_k=%d", topK)

	answer, _, err := h.pipeline.Ask(ctx, query, topK)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := json.Marshal(answer)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
