package embedding

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/metrics"
)

// ResilientEmbedder degrades from the remote chain to the local hash
// embedder when the remote path fails. The degradation is never surfaced
// as an error; every fallback decision is logged and counted so tests
// and operators can see which path ran. Callers must inspect the result
// scheme before mixing vectors from different paths in one store.
type ResilientEmbedder struct {
	remote   domain.Embedder // nil when no remote provider is configured
	fallback *HashEmbedder
	logger   *zap.Logger
}

// NewResilientEmbedder wraps remote (may be nil) with the hash fallback.
func NewResilientEmbedder(remote domain.Embedder, logger *zap.Logger) *ResilientEmbedder {
	return &ResilientEmbedder{
		remote:   remote,
		fallback: NewHashEmbedder(),
		logger:   logger,
	}
}

// Embed tries the remote chain first, then the local fallback. Context
// cancellation and budget rejection are not degraded: a canceled request
// fails instead of producing a differently-schemed vector, and a
// rejected budget is a policy decision the fallback must not undo.
func (r *ResilientEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if r.remote == nil {
		return r.fallback.Embed(ctx, text)
	}

	result, err := r.remote.Embed(ctx, text)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return domain.EmbeddingResult{}, ctx.Err()
	}
	if errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		return domain.EmbeddingResult{}, err
	}

	metrics.EmbeddingFallbacksTotal.Inc()
	r.logger.Warn("embedding_fallback",
		zap.String("to_scheme", string(domain.SchemeHash)),
		zap.Error(err),
	)

	return r.fallback.Embed(ctx, text)
}
