package rag

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/grounded/internal/apperr"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "vectorstore.json")
	entries := []IndexEntry{
		{ID: 0, Source: "b.md", Text: "second file first", Embedding: []float64{0.25, -1.5, 3}},
		{ID: 1, Source: "a.md", Text: "unicode ✓ \"quoted\" <tag>", Embedding: []float64{1e-9, 0, 42}},
		{ID: 5, Source: "a.md", Text: "gap in ids after edits", Embedding: []float64{}},
	}

	require.NoError(t, SaveStore(path, entries))
	loaded, err := LoadStore(path)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not be left behind")
}

func TestSaveStoreWritesPlainJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, SaveStore(path, []IndexEntry{{ID: 0, Source: "s", Text: "t", Embedding: []float64{1}}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var generic []map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	require.Len(t, generic, 1)
	for _, key := range []string{"id", "source", "text", "embedding"} {
		assert.Contains(t, generic[0], key)
	}
	assert.Len(t, generic[0], 4)
}

func TestSaveStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, SaveStore(path, []IndexEntry{{ID: 0, Source: "old"}, {ID: 1, Source: "old"}}))
	require.NoError(t, SaveStore(path, nil))

	loaded, err := LoadStore(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadStoreMissingFileIsInputError(t *testing.T) {
	_, err := LoadStore(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInput))
}

func TestLoadStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644))
	_, err := LoadStore(path)
	assert.Error(t, err)
}

func TestStoreDimension(t *testing.T) {
	dim, ok := StoreDimension([]IndexEntry{{Embedding: []float64{1, 2}}, {Embedding: []float64{3, 4}}})
	assert.Equal(t, 2, dim)
	assert.True(t, ok)

	_, ok = StoreDimension([]IndexEntry{{Embedding: []float64{1, 2}}, {Embedding: []float64{3}}})
	assert.False(t, ok)

	dim, ok = StoreDimension(nil)
	assert.Zero(t, dim)
	assert.True(t, ok)
}
