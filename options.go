package ideascope

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	redisAddrs    []string
	redisPassword string
	keyPrefix     string

	embeddingAPIKey  string
	embeddingBaseURL string
	embeddingModel   string
	embeddingDims    int

	capacity      int
	topK          int
	minSimilarity float64
	maxRetries    int

	providers []Provider
	research  *Provider

	logger *zap.Logger
}

// Provider declares one OpenAI-compatible analysis provider.
type Provider struct {
	ID          string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Priority    int
}

// WithRedis enables the Redis-backed embedding cache.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	}
}

// WithKeyPrefix overrides the Redis key namespace (default "ideascope:").
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithRemoteEmbedding configures the remote embedding provider. Without
// it, the deterministic hash embedder serves every request.
func WithRemoteEmbedding(apiKey, baseURL, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.embeddingAPIKey = apiKey
		c.embeddingBaseURL = baseURL
		c.embeddingModel = model
		c.embeddingDims = dimensions
	}
}

// WithCapacity sets the vector store record bound (default 1000).
func WithCapacity(n int) Option {
	return func(c *clientConfig) { c.capacity = n }
}

// WithRetrieval sets topK and minSimilarity for similarity search.
func WithRetrieval(topK int, minSimilarity float64) Option {
	return func(c *clientConfig) {
		c.topK = topK
		c.minSimilarity = minSimilarity
	}
}

// WithMaxRetries bounds per-provider backoff retries (default 3).
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) { c.maxRetries = n }
}

// WithProviders declares the analysis provider chain. Providers are
// tried in ascending priority order.
func WithProviders(providers ...Provider) Option {
	return func(c *clientConfig) { c.providers = providers }
}

// WithResearchProvider enables the market-research pre-pass.
func WithResearchProvider(p Provider) Option {
	return func(c *clientConfig) { c.research = &p }
}

// WithLogger sets the zap logger (default zap.NewNop).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
