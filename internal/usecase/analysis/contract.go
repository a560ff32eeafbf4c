package analysis

import (
	"context"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/usecase/retrieval"
)

// Provider is one chat completion backend.
type Provider interface {
	ID() string
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Retriever supplies prior-idea context and stores completed analyses.
type Retriever interface {
	FindSimilar(ctx context.Context, idea domain.IdeaInput) (retrieval.Context, error)
	StoreAnalysis(ctx context.Context, rec domain.IdeaRecord) bool
}
