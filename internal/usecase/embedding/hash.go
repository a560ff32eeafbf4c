package embedding

import (
	"context"
	"strings"

	"github.com/arcline/ideascope/internal/domain"
)

// HashDimensions is the fixed vector size of the local fallback scheme.
const HashDimensions = 384

// HashEmbedder is the deterministic local fallback: bag-of-words hashing
// into a fixed-size vector. Its only contract is determinism and zero
// external dependencies.
type HashEmbedder struct{}

// NewHashEmbedder creates the local fallback embedder.
func NewHashEmbedder() *HashEmbedder { return &HashEmbedder{} }

// Scheme returns the fallback embedding scheme tag.
func (h *HashEmbedder) Scheme() domain.Scheme { return domain.SchemeHash }

// Embed hashes whitespace-delimited tokens into vector buckets. Same
// text always yields the same vector.
func (h *HashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	vec := make([]float32, HashDimensions)

	for _, tok := range strings.Fields(strings.ToLower(text)) {
		var sum int
		for _, r := range tok {
			sum += int(r)
		}
		vec[sum%HashDimensions]++
	}

	return domain.EmbeddingResult{
		Embedding: vec,
		Scheme:    domain.SchemeHash,
	}, nil
}
