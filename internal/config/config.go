package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ideascope API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings. Optional: without
// addresses the service runs with no embedding cache or persisted budget.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StoreConfig holds in-memory vector store and retrieval settings.
type StoreConfig struct {
	Capacity      int     `yaml:"capacity"`
	TopK          int     `yaml:"top_k"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// StorageConfig holds key namespace settings for Redis-backed state.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds remote embedding provider settings.
type EmbeddingConfig struct {
	Provider      string       `yaml:"provider"`
	APIKey        string       `yaml:"api_key"`
	BaseURL       string       `yaml:"base_url"`
	Model         string       `yaml:"model"`
	Dimensions    int          `yaml:"dimensions"`
	MaxInputChars int          `yaml:"max_input_chars"`
	Budget        BudgetConfig `yaml:"budget"`
}

// Enabled reports whether a remote embedding provider is configured.
// Without one, the deterministic hash embedder serves every request.
func (e EmbeddingConfig) Enabled() bool {
	return e.APIKey != ""
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// AnalysisConfig holds orchestration settings.
type AnalysisConfig struct {
	MaxRetries int              `yaml:"max_retries"`
	Providers  []ProviderConfig `yaml:"providers"`
}

// Provider roles.
const (
	RoleAnalyst  = "analyst"
	RoleResearch = "research"
)

// ProviderConfig holds one analysis provider's settings. All providers
// speak the OpenAI-compatible chat completions protocol; BaseURL selects
// the vendor endpoint.
type ProviderConfig struct {
	ID          string  `yaml:"id"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Enabled     bool    `yaml:"enabled"`
	Priority    int     `yaml:"priority"`
	Role        string  `yaml:"role"` // analyst (default) | research
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Store.Capacity <= 0 {
		c.Store.Capacity = 1000
	}
	if c.Store.TopK <= 0 {
		c.Store.TopK = 5
	}
	if c.Store.MinSimilarity <= 0 {
		c.Store.MinSimilarity = 0.3
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "ideascope:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.MaxInputChars <= 0 {
		c.Embedding.MaxInputChars = 8000
	}
	if c.Analysis.MaxRetries <= 0 {
		c.Analysis.MaxRetries = 3
	}
	for i := range c.Analysis.Providers {
		if c.Analysis.Providers[i].Role == "" {
			c.Analysis.Providers[i].Role = RoleAnalyst
		}
		if c.Analysis.Providers[i].MaxTokens <= 0 {
			c.Analysis.Providers[i].MaxTokens = 4000
		}
	}
}

// Validate checks the configuration for correctness. Enabled providers
// missing a credential fail here, at startup, not at call time.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Store.MinSimilarity < 0 || c.Store.MinSimilarity > 1 {
		return fmt.Errorf("store.min_similarity must be within [0, 1], got %v", c.Store.MinSimilarity)
	}
	switch c.Embedding.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"embedding.budget.action must be \"warn\" or \"reject\", got %q",
			c.Embedding.Budget.Action,
		)
	}
	seen := make(map[string]struct{}, len(c.Analysis.Providers))
	for _, p := range c.Analysis.Providers {
		if p.ID == "" {
			return fmt.Errorf("analysis.providers entry missing id")
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("analysis.providers.%s declared twice", p.ID)
		}
		seen[p.ID] = struct{}{}
		if !p.Enabled {
			continue
		}
		if p.APIKey == "" {
			return fmt.Errorf("analysis.providers.%s is enabled but has no api_key", p.ID)
		}
		if p.Model == "" {
			return fmt.Errorf("analysis.providers.%s is enabled but has no model", p.ID)
		}
		if p.Role != RoleAnalyst && p.Role != RoleResearch {
			return fmt.Errorf(
				"analysis.providers.%s.role must be %q or %q, got %q",
				p.ID, RoleAnalyst, RoleResearch, p.Role,
			)
		}
	}
	return nil
}

// EnabledProviders returns enabled providers with the given role, sorted
// by ascending priority (stable, so config order breaks ties).
func (c *Config) EnabledProviders(role string) []ProviderConfig {
	var out []ProviderConfig
	for _, p := range c.Analysis.Providers {
		if p.Enabled && p.Role == role {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
