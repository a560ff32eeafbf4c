package domain

import "context"

// Scheme identifies how an embedding was produced. Vectors from different
// schemes live in different semantic spaces and must never be compared.
type Scheme string

// SchemeHash is the deterministic local bag-of-words fallback (384 dims).
const SchemeHash Scheme = "hash-384"

// RemoteScheme tags vectors produced by a remote embedding model.
func RemoteScheme(model string) Scheme {
	return Scheme("remote:" + model)
}

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the vector, its scheme tag, and token usage
// through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	Scheme       Scheme
	PromptTokens int
	TotalTokens  int
}

// VectorRecord couples an idea with its embedding inside the vector store.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Scheme    Scheme
	Metadata  IdeaRecord
}

// SimilarityMatch is a transient, per-query ranking entry.
type SimilarityMatch struct {
	Record     IdeaRecord `json:"record"`
	Similarity float64    `json:"similarity"`
}
