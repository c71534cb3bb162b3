package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mwiater/grounded/internal/appconfig"
	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/providers"
)

// IndexOptions controls corpus discovery, chunking and embedding batches.
type IndexOptions struct {
	DocsDir           string
	ChunkSize         int
	ChunkOverlap      int
	BatchSize         int
	Concurrency       int
	AllowedExtensions []string
	ExcludeGlobs      []string
}

// IndexOptionsFromConfig copies the indexing settings out of cfg.
func IndexOptionsFromConfig(cfg appconfig.Config) IndexOptions {
	return IndexOptions{
		DocsDir:           cfg.DocsDir,
		ChunkSize:         cfg.ChunkSize,
		ChunkOverlap:      cfg.ChunkOverlap,
		BatchSize:         cfg.BatchSize,
		Concurrency:       cfg.EmbedConcurrency,
		AllowedExtensions: cfg.AllowedExtensions,
		ExcludeGlobs:      cfg.ExcludeGlobs,
	}
}

type chunkRecord struct {
	Source string
	Text   string
}

// BuildIndex chunks every corpus file under opts.DocsDir and embeds the chunks
// in batches. Batches may be embedded concurrently, but entry ids are always
// dense, start at 0 and follow chunk order.
func BuildIndex(ctx context.Context, opts IndexOptions, embedder providers.Embedder) ([]IndexEntry, error) {
	if strings.TrimSpace(opts.DocsDir) == "" {
		return nil, apperr.Inputf("docs directory is required")
	}
	if opts.BatchSize <= 0 {
		return nil, apperr.Configf("batchSize must be greater than zero")
	}
	concurrency := max(1, opts.Concurrency)

	start := time.Now()
	logging.LogEvent("[INDEX] Indexing corpus: %s", opts.DocsDir)
	logging.LogEvent("[INDEX] Chunk size: %d, overlap: %d, batch size: %d, concurrency: %d",
		opts.ChunkSize, opts.ChunkOverlap, opts.BatchSize, concurrency)

	files, err := discoverCorpusFiles(opts.DocsDir, opts.AllowedExtensions, opts.ExcludeGlobs)
	if err != nil {
		return nil, err
	}
	logging.LogEvent("[INDEX] Discovered %d corpus files", len(files))

	records, err := collectChunks(files, opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.Inputf("no text files found to index")
	}

	batches := splitBatches(records, opts.BatchSize)
	vectors := make([][][]float64, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts := make([]string, len(batch))
			for j, record := range batch {
				texts[j] = record.Text
			}
			batchStart := time.Now()
			embeddings, err := embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch %d/%d: %w", i+1, len(batches), err)
			}
			if len(embeddings) != len(batch) {
				return apperr.Provider("embeddings", fmt.Errorf("%w: batch %d expected %d embeddings, received %d",
					providers.ErrMalformedResponse, i+1, len(batch), len(embeddings)))
			}
			vectors[i] = embeddings
			logging.LogEvent("[INDEX] Embedded batch %d/%d (%d chunks) in %s",
				i+1, len(batches), len(batch), time.Since(batchStart).Truncate(time.Millisecond))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]IndexEntry, 0, len(records))
	for i, batch := range batches {
		for j, record := range batch {
			entries = append(entries, IndexEntry{
				ID:        len(entries),
				Source:    record.Source,
				Text:      record.Text,
				Embedding: vectors[i][j],
			})
		}
	}

	logging.LogEvent("[INDEX] Index of %d entries built in %s", len(entries), time.Since(start).Truncate(time.Millisecond))
	return entries, nil
}

func collectChunks(files []string, chunkSize, overlap int) ([]chunkRecord, error) {
	var records []chunkRecord
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		source := filepath.Base(path)
		chunks := ChunkText(string(raw), chunkSize, overlap)
		if len(chunks) == 0 {
			logging.LogEvent("[INDEX] Skipping empty file: %s", path)
			continue
		}
		logging.LogEvent("[INDEX] Chunked %s into %d chunks", source, len(chunks))
		for _, chunk := range chunks {
			records = append(records, chunkRecord{Source: source, Text: chunk})
		}
	}
	return records, nil
}

func splitBatches(records []chunkRecord, size int) [][]chunkRecord {
	var batches [][]chunkRecord
	for i := 0; i < len(records); i += size {
		end := min(i+size, len(records))
		batches = append(batches, records[i:end])
	}
	return batches
}

func discoverCorpusFiles(root string, allowed []string, exclude []string) ([]string, error) {
	var files []string
	allowedMap := make(map[string]struct{}, len(allowed))
	for _, ext := range allowed {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowedMap[ext] = struct{}{}
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if shouldExclude(path, exclude) && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if shouldExclude(path, exclude) {
			return nil
		}

		if len(allowedMap) > 0 {
			ext := strings.ToLower(filepath.Ext(path))
			if _, ok := allowedMap[ext]; !ok {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Input("docs directory", err)
		}
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

func shouldExclude(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pattern = filepath.ToSlash(pattern)
		if strings.Contains(pattern, "**") {
			trimmed := strings.ReplaceAll(pattern, "**", "")
			if trimmed != "" && strings.Contains(normalized, trimmed) {
				return true
			}
		}
		if ok, _ := filepath.Match(pattern, normalized); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(normalized)); ok {
			return true
		}
	}
	return false
}
