package domain

import "errors"

var (
	// ErrNoProvidersAvailable signals that every configured provider failed.
	ErrNoProvidersAvailable = errors.New("no analysis providers available")
	// ErrProviderOverloaded signals a transient provider failure worth retrying.
	ErrProviderOverloaded = errors.New("provider overloaded")
	// ErrMalformedResponse signals a provider reply that failed JSON parsing.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrEmbeddingProviderError signals a remote embedding failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")

	// ErrSchemeMismatch signals an attempt to mix embedding schemes in one store.
	ErrSchemeMismatch = errors.New("embedding scheme mismatch")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
