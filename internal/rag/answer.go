package rag

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/providers"
)

// generateTemperature is used for free-form generation and grounded answers.
const generateTemperature = 0.2

const answerInstructions = "Answer the question using only the context below. Cite sources in-line as [source:id]. " +
	"If the answer is not in the context, say you do not know."

// citationPattern matches "[source:id]" where source has no brackets and id is decimal.
var citationPattern = regexp.MustCompile(`\[([^\[\]]+?:\d+)\]`)

// Generate sends prompt as a single user turn and returns the trimmed completion.
func Generate(ctx context.Context, completer providers.Completer, prompt string) (string, error) {
	messages := []providers.ChatMessage{
		{Role: providers.RoleUser, Content: prompt},
	}
	output, err := completer.Complete(ctx, messages, generateTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// AnswerWithCitations asks the model to answer query from chunks only and
// returns the answer with the citation tags it used.
func AnswerWithCitations(ctx context.Context, completer providers.Completer, query string, chunks []QueryResult) (Answer, error) {
	prompt := BuildPrompt(query, chunks)
	logging.LogEvent("[RAG] answering with %d context chunks", len(chunks))

	raw, err := Generate(ctx, completer, prompt)
	if err != nil {
		return Answer{}, err
	}
	return Answer{
		Answer:    raw,
		Citations: ExtractCitations(raw),
	}, nil
}

// BuildPrompt assembles the instruction block, the context block and the question.
func BuildPrompt(query string, chunks []QueryResult) string {
	contextBlock, _ := FormatContext(chunks)
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s\nAnswer:", answerInstructions, contextBlock, query)
}

// ExtractCitations returns the distinct "source:id" tags in answer, sorted.
func ExtractCitations(answer string) []string {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)
	citations := make([]string, 0, len(matches))
	for _, match := range matches {
		citations = append(citations, match[1])
	}
	slices.Sort(citations)
	return slices.Compact(citations)
}
