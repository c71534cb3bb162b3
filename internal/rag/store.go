package rag

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwiater/grounded/internal/apperr"
)

// LoadStore reads a JSON vector store from disk, preserving entry order.
func LoadStore(path string) ([]IndexEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Inputf("vector store %s does not exist; run the index command first", path)
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	return entries, nil
}

// SaveStore writes entries to path as a JSON array. Parent directories are
// created as needed and the file is replaced atomically via rename, so a
// concurrent reader sees either the old or the new store. Concurrent writers
// are not coordinated: the last rename wins.
func SaveStore(path string, entries []IndexEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	if entries == nil {
		entries = []IndexEntry{}
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod store: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// StoreDimension returns the embedding length of the first entry and whether
// every entry shares it.
func StoreDimension(entries []IndexEntry) (int, bool) {
	if len(entries) == 0 {
		return 0, true
	}
	dim := len(entries[0].Embedding)
	for _, entry := range entries[1:] {
		if len(entry.Embedding) != dim {
			return dim, false
		}
	}
	return dim, true
}
