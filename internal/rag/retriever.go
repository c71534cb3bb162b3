package rag

import (
	"math"
	"sort"
)

// Search scores every entry against queryEmbedding and returns the topK best,
// highest score first. Entries with equal scores keep their store order.
// A topK of zero or less yields an empty result.
func Search(entries []IndexEntry, queryEmbedding []float64, topK int) []QueryResult {
	if topK <= 0 || len(entries) == 0 {
		return []QueryResult{}
	}

	queryNorm := vectorNorm(queryEmbedding)
	scored := make([]QueryResult, 0, len(entries))
	for _, entry := range entries {
		scored = append(scored, QueryResult{
			ID:     entry.ID,
			Source: entry.Source,
			Text:   entry.Text,
			Score:  cosineWithNorm(queryEmbedding, entry.Embedding, queryNorm),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}

// CosineSimilarity returns dot(a,b) / (|a|·|b|). Vectors of different length
// or with zero magnitude score 0.
func CosineSimilarity(a, b []float64) float64 {
	return cosineWithNorm(a, b, vectorNorm(a))
}

func cosineWithNorm(a, b []float64, normA float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	if normA == 0 {
		return 0
	}
	normB := vectorNorm(b)
	if normB == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	score := dot / (normA * normB)
	// rounding can push |score| a hair past 1
	return math.Max(-1, math.Min(1, score))
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}
