// Package similarity provides cosine similarity and ranked top-K search
// over vector store snapshots.
package similarity

import (
	"math"
	"sort"

	"github.com/arcline/ideascope/internal/domain"
)

// Cosine computes the cosine similarity between two vectors. Mismatched
// lengths or a zero-norm vector yield 0, never NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Search ranks candidates against the query vector and returns at most
// topK matches at or above minSimilarity. Truncation to topK happens
// before the threshold filter: the result set may be shorter than K but
// never contains a match that outranked a discarded one.
func Search(
	query []float32, candidates []domain.VectorRecord,
	topK int, minSimilarity float64,
) []domain.SimilarityMatch {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}

	matches := make([]domain.SimilarityMatch, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, domain.SimilarityMatch{
			Record:     c.Metadata,
			Similarity: Cosine(query, c.Embedding),
		})
	}

	// Stable: equal scores keep insertion order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	filtered := matches[:0]
	for _, m := range matches {
		if m.Similarity >= minSimilarity {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
