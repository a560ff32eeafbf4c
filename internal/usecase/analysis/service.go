package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/metrics"
	"github.com/arcline/ideascope/internal/usecase/retrieval"
)

// DefaultMaxRetries bounds backoff retries against a single provider.
const DefaultMaxRetries = 3

// Service orchestrates idea analysis across an ordered provider chain.
// Providers are tried in priority order; transient overloads are retried
// against the same provider with exponential backoff before falling
// through to the next one.
type Service struct {
	analysts    []Provider
	research    Provider // nil when no research provider is configured
	retriever   Retriever
	maxRetries  int
	backoffUnit time.Duration
	now         func() time.Time
	newID       func() string
	logger      *zap.Logger
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithResearchProvider enables the market-research pre-pass.
func WithResearchProvider(p Provider) Option {
	return func(s *Service) { s.research = p }
}

// WithMaxRetries overrides the per-provider retry bound.
func WithMaxRetries(n int) Option {
	return func(s *Service) { s.maxRetries = n }
}

// WithBackoffUnit overrides the backoff base duration (default 1s).
// Tests shrink it so retry paths run in milliseconds.
func WithBackoffUnit(d time.Duration) Option {
	return func(s *Service) { s.backoffUnit = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// New creates an analysis orchestrator. analysts must already be sorted
// by priority (config.EnabledProviders does this).
func New(analysts []Provider, retriever Retriever, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		analysts:    analysts,
		retriever:   retriever,
		maxRetries:  DefaultMaxRetries,
		backoffUnit: time.Second,
		now:         time.Now,
		newID:       defaultID,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultID() string {
	return fmt.Sprintf("idea_%d", time.Now().UnixNano())
}

// Analyze runs the full pipeline for one idea: retrieval, optional
// research, then the provider chain. On success the evaluated idea is
// stored back into the retrieval corpus. Returns
// domain.ErrNoProvidersAvailable when every provider is exhausted.
func (s *Service) Analyze(ctx context.Context, idea domain.IdeaInput) (domain.AnalysisResult, error) {
	if err := idea.Validate(); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("invalid idea: %w", err)
	}

	start := s.now()

	retrieved, err := s.retriever.FindSimilar(ctx, idea)
	if err != nil {
		if ctx.Err() != nil {
			metrics.AnalysisRequestsTotal.WithLabelValues("canceled").Inc()
			return domain.AnalysisResult{}, ctx.Err()
		}
		// Retrieval is advisory context. Proceed without it.
		s.logger.Warn("Retrieval failed, analyzing without prior context",
			zap.String("idea", idea.Title),
			zap.Error(err),
		)
		retrieved = retrieval.Context{}
	}

	research := s.runResearch(ctx, idea)
	messages := buildAnalysisMessages(idea, retrieved, research)

	result, provider, attempts, err := s.completeWithFallback(ctx, messages)
	if err != nil {
		status := "exhausted"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = "canceled"
		}
		metrics.AnalysisRequestsTotal.WithLabelValues(status).Inc()
		return domain.AnalysisResult{}, err
	}

	result.Provider = provider
	result.Attempts = attempts
	result.AnalyzedAt = s.now()

	metrics.AnalysisRequestsTotal.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.WithLabelValues(provider).Observe(s.now().Sub(start).Seconds())

	s.logger.Info("Analysis completed",
		zap.String("idea", idea.Title),
		zap.String("provider", provider),
		zap.Int("attempts", attempts),
		zap.String("verdict", result.FinalVerdict),
		zap.Int("score", result.Scores.Overall()),
	)

	s.storeResult(ctx, idea, result)

	return result, nil
}

// runResearch performs the optional market-research pre-pass. Failures
// are logged and swallowed: research enriches the prompt, nothing more.
func (s *Service) runResearch(ctx context.Context, idea domain.IdeaInput) *domain.ResearchBrief {
	if s.research == nil {
		return nil
	}

	content, err := s.research.Complete(ctx, buildResearchMessages(idea))
	if err != nil {
		s.logger.Warn("Research pre-pass failed",
			zap.String("provider", s.research.ID()),
			zap.Error(err),
		)
		return nil
	}

	return &domain.ResearchBrief{
		Content:     content,
		Provider:    s.research.ID(),
		RetrievedAt: s.now(),
	}
}

// completeWithFallback walks the provider chain. Per provider: retry on
// transient overload with 2^attempt backoff up to maxRetries, then move
// on. Malformed responses and hard errors advance immediately.
func (s *Service) completeWithFallback(
	ctx context.Context, messages []domain.ChatMessage,
) (domain.AnalysisResult, string, int, error) {
	if len(s.analysts) == 0 {
		return domain.AnalysisResult{}, "", 0, domain.ErrNoProvidersAvailable
	}

	totalAttempts := 0

	for i, provider := range s.analysts {
		id := provider.ID()

		for attempt := 0; ; attempt++ {
			totalAttempts++

			raw, err := provider.Complete(ctx, messages)
			if err == nil {
				result, perr := parseResult(raw)
				if perr == nil {
					metrics.AnalysisProviderAttemptsTotal.WithLabelValues(id, "success").Inc()
					return result, id, totalAttempts, nil
				}
				metrics.AnalysisProviderAttemptsTotal.WithLabelValues(id, "malformed").Inc()
				s.logger.Warn("Provider returned malformed response",
					zap.String("provider", id),
					zap.Error(perr),
				)
				break
			}

			if ctx.Err() != nil {
				return domain.AnalysisResult{}, "", totalAttempts, ctx.Err()
			}

			if !errors.Is(err, domain.ErrProviderOverloaded) {
				metrics.AnalysisProviderAttemptsTotal.WithLabelValues(id, "error").Inc()
				s.logger.Warn("Provider call failed",
					zap.String("provider", id),
					zap.Error(err),
				)
				break
			}

			metrics.AnalysisProviderAttemptsTotal.WithLabelValues(id, "overloaded").Inc()

			if attempt >= s.maxRetries-1 {
				s.logger.Warn("Provider retries exhausted",
					zap.String("provider", id),
					zap.Int("attempts", attempt+1),
				)
				break
			}

			wait := s.backoffUnit * (1 << attempt)
			s.logger.Info("Provider overloaded, backing off",
				zap.String("provider", id),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
			)
			metrics.AnalysisProviderRetriesTotal.WithLabelValues(id).Inc()

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return domain.AnalysisResult{}, "", totalAttempts, ctx.Err()
			case <-timer.C:
			}
		}

		if i+1 < len(s.analysts) {
			next := s.analysts[i+1].ID()
			metrics.AnalysisProviderFallbacksTotal.WithLabelValues(id, next).Inc()
			s.logger.Warn("provider_fallback",
				zap.String("from", id),
				zap.String("to", next),
			)
		}
	}

	return domain.AnalysisResult{}, "", totalAttempts,
		fmt.Errorf("all %d providers failed: %w", len(s.analysts), domain.ErrNoProvidersAvailable)
}

// storeResult writes the evaluated idea back into the retrieval corpus.
func (s *Service) storeResult(ctx context.Context, idea domain.IdeaInput, result domain.AnalysisResult) {
	verdict, err := domain.ParseVerdict(result.FinalVerdict)
	if err != nil {
		// parseResult already validated the verdict; belt and braces.
		verdict = domain.VerdictRisky
	}

	s.retriever.StoreAnalysis(ctx, domain.IdeaRecord{
		ID:               s.newID(),
		Title:            idea.Title,
		Summary:          idea.Summary,
		Description:      idea.Description,
		Audience:         idea.Audience,
		Domain:           result.Domain,
		Score:            result.Scores.Overall(),
		Verdict:          verdict,
		MarketSize:       idea.MarketSize,
		TeamStrength:     idea.TeamStrength,
		Traction:         idea.Traction,
		CompetitorsCount: len(result.Competitors),
		StoredAt:         s.now(),
	})
}
