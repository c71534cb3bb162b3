package rag

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	var cases = []struct {
		input   string
		size    int
		overlap int
		output  []string
	}{
		{input: "abcdefg", size: 3, overlap: 0, output: []string{"abc", "def", "g"}},
		{input: "abcdefg", size: 3, overlap: 1, output: []string{"abc", "cde", "efg"}},
		{input: "abcdefg", size: 9, overlap: 5, output: []string{"abcdefg"}},
		{input: "  a \n\t b   c ", size: 3, overlap: 0, output: []string{"a b", " c"}},
		{input: "", size: 9, overlap: 5, output: nil},
		{input: " \n\t ", size: 4, overlap: 1, output: nil},
		{input: "abcdef", size: 0, overlap: 0, output: nil},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			out := ChunkText(c.input, c.size, c.overlap)
			assert.Equal(t, c.output, out)
		})
	}
}

// TestChunkTextOverlapNotSmallerThanSize checks the loop still terminates and
// falls back to adjacent windows.
func TestChunkTextOverlapNotSmallerThanSize(t *testing.T) {
	for _, overlap := range []int{4, 5, 100} {
		out := ChunkText("abcdefghij", 4, overlap)
		assert.Equal(t, []string{"abcd", "efgh", "ij"}, out, "overlap %d", overlap)
	}
}

func TestChunkTextCountWithoutOverlap(t *testing.T) {
	text := strings.Repeat("x", 2501)
	for _, size := range []int{1, 7, 100, 800, 2501, 4000} {
		want := (len(text) + size - 1) / size
		assert.Len(t, ChunkText(text, size, 0), want, "size %d", size)
	}
}

// TestChunkTextCoverage reconstructs the normalised text from the windows and
// confirms there are no gaps and the final window reaches the end.
func TestChunkTextCoverage(t *testing.T) {
	text := "Lorem ipsum dolor sit amet,   consectetur\nadipiscing elit. Ünïcödé runes count as one character each."
	normalized := []rune(strings.Join(strings.Fields(text), " "))

	for _, tc := range []struct{ size, overlap int }{{10, 3}, {17, 0}, {5, 4}, {200, 50}} {
		chunks := ChunkText(text, tc.size, tc.overlap)
		require.NotEmpty(t, chunks)

		offset := 0
		var rebuilt []rune
		for i, chunk := range chunks {
			n := utf8.RuneCountInString(chunk)
			assert.LessOrEqual(t, n, tc.size)
			if i > 0 {
				offset -= tc.overlap
			}
			require.GreaterOrEqual(t, offset, 0)
			assert.Equal(t, string(normalized[offset:offset+n]), chunk)
			rebuilt = append(rebuilt[:offset], []rune(chunk)...)
			offset += n
		}
		assert.Equal(t, len(normalized), offset, "final chunk must end at text length")
		assert.Equal(t, string(normalized), string(rebuilt))
	}
}
