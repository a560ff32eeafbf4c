// Package ideascope evaluates startup ideas: it retrieves similar
// previously-analyzed ideas from a bounded in-memory vector store and
// orchestrates the analysis itself across a prioritized chain of
// OpenAI-compatible chat providers with retry and fallback.
package ideascope

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/db"
	dbRedis "github.com/arcline/ideascope/internal/db/redis"
	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/metrics"
	"github.com/arcline/ideascope/internal/repository/embcache"
	openaiTransport "github.com/arcline/ideascope/internal/transport/openai"
	analysisuc "github.com/arcline/ideascope/internal/usecase/analysis"
	embeddinguc "github.com/arcline/ideascope/internal/usecase/embedding"
	retrievaluc "github.com/arcline/ideascope/internal/usecase/retrieval"
	"github.com/arcline/ideascope/internal/vectorstore"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the ideascope SDK entry point.
type Client struct {
	store        db.Store
	retrievalSvc *retrievaluc.Service
	analysisSvc  *analysisuc.Service
}

// New creates an ideascope Client. All options are optional: with none,
// ideas are embedded by the local hash embedder, stored in a 1000-record
// store, and Analyze fails with ErrNoProvidersAvailable.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:     "ideascope:",
		capacity:      vectorstore.DefaultCapacity,
		topK:          5,
		minSimilarity: 0.3,
		maxRetries:    analysisuc.DefaultMaxRetries,
		logger:        zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	var store db.Store
	if len(cfg.redisAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("ideascope: create redis store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("ideascope: redis not ready: %w", err)
		}
		store = s
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	embedder := buildEmbedder(store, cfg)

	vecStore := vectorstore.New(cfg.capacity)
	retrievalSvc := retrievaluc.New(vecStore, embedder, cfg.topK, cfg.minSimilarity, cfg.logger)

	// Lower priority value means earlier in the fallback chain; equal
	// priorities keep declaration order.
	providers := append([]Provider(nil), cfg.providers...)
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Priority < providers[j].Priority
	})

	analysts := make([]analysisuc.Provider, 0, len(providers))
	for _, p := range providers {
		analysts = append(analysts, newChatClient(p, cfg.logger))
	}

	opts := []analysisuc.Option{analysisuc.WithMaxRetries(cfg.maxRetries)}
	if cfg.research != nil {
		opts = append(opts, analysisuc.WithResearchProvider(newChatClient(*cfg.research, cfg.logger)))
	}

	return &Client{
		store:        store,
		retrievalSvc: retrievalSvc,
		analysisSvc:  analysisuc.New(analysts, retrievalSvc, cfg.logger, opts...),
	}
}

func buildEmbedder(store db.Store, cfg *clientConfig) domain.Embedder {
	if cfg.embeddingAPIKey == "" {
		return embeddinguc.NewResilientEmbedder(nil, cfg.logger)
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.embeddingAPIKey,
		BaseURL:    cfg.embeddingBaseURL,
		Model:      cfg.embeddingModel,
		Dimensions: cfg.embeddingDims,
		Provider:   "openai",
		Logger:     cfg.logger,
	})

	var remote domain.Embedder = base
	if store != nil {
		remote = embcache.New(base, store, cfg.keyPrefix, metrics.EmbeddingCacheTotal, cfg.logger)
	}

	return embeddinguc.NewResilientEmbedder(remote, cfg.logger)
}

func newChatClient(p Provider, logger *zap.Logger) *openaiTransport.ChatClient {
	return openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
		APIKey:      p.APIKey,
		BaseURL:     p.BaseURL,
		Provider:    p.ID,
		Model:       p.Model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Logger:      logger,
	})
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cache store connectivity. No-op without Redis.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Analyze runs the full evaluation pipeline for an idea.
func (c *Client) Analyze(ctx context.Context, idea Idea) (Analysis, error) {
	result, err := c.analysisSvc.Analyze(ctx, idea.toDomain())
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	return analysisFromDomain(result), nil
}

// FindSimilar returns prior ideas most similar to the given one.
func (c *Client) FindSimilar(ctx context.Context, idea Idea) (Retrieved, error) {
	retrieved, err := c.retrievalSvc.FindSimilar(ctx, idea.toDomain())
	if err != nil {
		return Retrieved{}, fmt.Errorf("find similar: %w", err)
	}
	return retrievedFromDomain(retrieved), nil
}

// Stats reports aggregate statistics over the stored corpus.
func (c *Client) Stats() Stats {
	return statsFromDomain(c.retrievalSvc.Stats())
}
