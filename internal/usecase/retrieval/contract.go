package retrieval

import (
	"context"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/vectorstore"
)

// VectorStore is the storage contract for idea vectors.
type VectorStore interface {
	Insert(rec domain.VectorRecord) error
	All() []domain.VectorRecord
	Len() int
	Stats() vectorstore.Stats
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Context is the retrieved background for one idea: the closest prior
// ideas plus pattern and summary text derived from them.
type Context struct {
	HasSimilar bool
	Matches    []domain.SimilarityMatch
	Patterns   []string
	Insights   string
	StoreSize  int
}
