package rag

import (
	"fmt"
	"strings"
)

// FormatContext renders ranked chunks as "[source:id] text" blocks separated by
// blank lines and reports how many distinct sources they cover.
func FormatContext(chunks []QueryResult) (string, int) {
	if len(chunks) == 0 {
		return "", 0
	}

	blocks := make([]string, 0, len(chunks))
	sourceSet := make(map[string]struct{})
	for _, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf("%s %s", CitationTag(chunk.Source, chunk.ID), chunk.Text))
		sourceSet[chunk.Source] = struct{}{}
	}
	return strings.Join(blocks, "\n\n"), len(sourceSet)
}

// CitationTag returns the inline tag the model is asked to cite, e.g. "[notes.md:3]".
func CitationTag(source string, id int) string {
	return fmt.Sprintf("[%s:%d]", source, id)
}
