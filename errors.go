package ideascope

import "github.com/arcline/ideascope/internal/domain"

// Sentinel errors surfaced by the SDK. Match with errors.Is.
var (
	ErrNoProvidersAvailable   = domain.ErrNoProvidersAvailable
	ErrProviderOverloaded     = domain.ErrProviderOverloaded
	ErrMalformedResponse      = domain.ErrMalformedResponse
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrSchemeMismatch         = domain.ErrSchemeMismatch
)
