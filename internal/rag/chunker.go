package rag

import "strings"

// ChunkText normalises whitespace in text and splits it into overlapping
// windows of at most chunkSize characters. Each window after the first starts
// overlap characters before the previous window's end. An overlap that is
// negative or not smaller than chunkSize is treated as zero so the window
// always advances.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	runes := []rune(normalized)
	length := len(runes)

	var chunks []string
	start := 0
	for {
		end := min(start+chunkSize, length)
		chunks = append(chunks, string(runes[start:end]))
		if end >= length {
			break
		}
		start = max(0, end-overlap)
	}
	return chunks
}
