package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/insight"
	"github.com/arcline/ideascope/internal/similarity"
	"github.com/arcline/ideascope/internal/vectorstore"
)

// Service retrieves similar prior ideas and stores completed analyses.
type Service struct {
	store         VectorStore
	embed         Embedder
	topK          int
	minSimilarity float64
	logger        *zap.Logger
}

// New creates a retrieval service.
func New(
	store VectorStore, embed Embedder,
	topK int, minSimilarity float64, logger *zap.Logger,
) *Service {
	return &Service{
		store:         store,
		embed:         embed,
		topK:          topK,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// FindSimilar embeds the idea and returns the retrieved context: closest
// prior ideas above the similarity floor, plus pattern and summary text.
func (s *Service) FindSimilar(ctx context.Context, idea domain.IdeaInput) (Context, error) {
	result, err := s.embed.Embed(ctx, idea.EmbeddingText())
	if err != nil {
		return Context{}, fmt.Errorf("embed idea: %w", err)
	}

	candidates := s.store.All()
	matches := similarity.Search(result.Embedding, candidates, s.topK, s.minSimilarity)

	// Vectors from another scheme never match meaningfully; the store
	// enforces single-scheme inserts, so a scheme flip (remote outage)
	// simply yields an empty retrieval until the store turns over.
	retrieved := Context{
		HasSimilar: len(matches) > 0,
		Matches:    matches,
		Patterns:   insight.Patterns(matches),
		Insights:   insight.Summary(matches),
		StoreSize:  s.store.Len(),
	}

	s.logger.Debug("Similarity retrieval completed",
		zap.String("idea", idea.Title),
		zap.String("scheme", string(result.Scheme)),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
	)

	return retrieved, nil
}

// StoreAnalysis embeds and stores a completed analysis for future
// retrieval. Storage failures are logged, never surfaced: losing one
// record from the advisory corpus must not fail the analysis itself.
func (s *Service) StoreAnalysis(ctx context.Context, rec domain.IdeaRecord) bool {
	input := domain.IdeaInput{
		Title:       rec.Title,
		Summary:     rec.Summary,
		Description: rec.Description,
		Audience:    rec.Audience,
	}

	result, err := s.embed.Embed(ctx, input.EmbeddingText())
	if err != nil {
		s.logger.Warn("Failed to embed analysis for storage",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
		return false
	}

	err = s.store.Insert(domain.VectorRecord{
		ID:        rec.ID,
		Embedding: result.Embedding,
		Scheme:    result.Scheme,
		Metadata:  rec,
	})
	if err != nil {
		s.logger.Warn("Failed to store analysis",
			zap.String("id", rec.ID),
			zap.String("scheme", string(result.Scheme)),
			zap.Error(err),
		)
		return false
	}

	s.logger.Debug("Analysis stored",
		zap.String("id", rec.ID),
		zap.Int("store_size", s.store.Len()),
	)
	return true
}

// Stats reports aggregate statistics over the stored corpus.
func (s *Service) Stats() vectorstore.Stats {
	return s.store.Stats()
}
