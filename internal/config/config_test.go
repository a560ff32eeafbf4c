package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Store.Capacity != 1000 {
		t.Errorf("expected default capacity 1000, got %d", cfg.Store.Capacity)
	}
	if cfg.Store.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Store.TopK)
	}
	if cfg.Store.MinSimilarity != 0.3 {
		t.Errorf("expected default min_similarity 0.3, got %v", cfg.Store.MinSimilarity)
	}
	if cfg.Analysis.MaxRetries != 3 {
		t.Errorf("expected default max_retries 3, got %d", cfg.Analysis.MaxRetries)
	}
	if cfg.Storage.KeyPrefix != "ideascope:" {
		t.Errorf("expected default key prefix, got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
}

func TestApplyDefaults_ProviderRole(t *testing.T) {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.Analysis.Providers = []ProviderConfig{{ID: "gemini"}}
	cfg.ApplyDefaults()

	if cfg.Analysis.Providers[0].Role != RoleAnalyst {
		t.Errorf("expected default role analyst, got %q", cfg.Analysis.Providers[0].Role)
	}
	if cfg.Analysis.Providers[0].MaxTokens != 4000 {
		t.Errorf("expected default max_tokens 4000, got %d", cfg.Analysis.Providers[0].MaxTokens)
	}
}

func TestValidate_Port(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}

	cfg.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 70000")
	}
}

func TestValidate_MinSimilarityRange(t *testing.T) {
	cfg := validConfig()
	cfg.Store.MinSimilarity = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for min_similarity > 1")
	}
}

func TestValidate_BudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Budget.Action = "explode"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown budget action")
	}

	cfg.Embedding.Budget.Action = "reject"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// An enabled provider without credentials must fail at startup, not at
// call time.
func TestValidate_EnabledProviderRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Providers = []ProviderConfig{
		{ID: "gemini", Enabled: true, Model: "gemini-2.0-flash", Role: RoleAnalyst},
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Errorf("expected api_key error, got %v", err)
	}

	cfg.Analysis.Providers[0].APIKey = "key"
	cfg.Analysis.Providers[0].Model = ""
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "model") {
		t.Errorf("expected model error, got %v", err)
	}
}

func TestValidate_DisabledProviderSkipsCredentialCheck(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Providers = []ProviderConfig{
		{ID: "gemini", Enabled: false},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled provider must not require credentials, got %v", err)
	}
}

func TestValidate_DuplicateProviderID(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Providers = []ProviderConfig{
		{ID: "gemini"},
		{ID: "gemini"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for duplicate provider id")
	}
}

func TestValidate_InvalidRole(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Providers = []ProviderConfig{
		{ID: "gemini", Enabled: true, APIKey: "k", Model: "m", Role: "oracle"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestEnabledProviders_SortedByPriority(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Providers = []ProviderConfig{
		{ID: "backup", Enabled: true, APIKey: "k", Model: "m", Role: RoleAnalyst, Priority: 2},
		{ID: "primary", Enabled: true, APIKey: "k", Model: "m", Role: RoleAnalyst, Priority: 1},
		{ID: "disabled", Enabled: false, Role: RoleAnalyst, Priority: 0},
		{ID: "research", Enabled: true, APIKey: "k", Model: "m", Role: RoleResearch, Priority: 1},
	}

	got := cfg.EnabledProviders(RoleAnalyst)
	if len(got) != 2 {
		t.Fatalf("expected 2 analysts, got %d", len(got))
	}
	if got[0].ID != "primary" || got[1].ID != "backup" {
		t.Errorf("expected priority order primary,backup; got %s,%s", got[0].ID, got[1].ID)
	}

	research := cfg.EnabledProviders(RoleResearch)
	if len(research) != 1 || research[0].ID != "research" {
		t.Errorf("expected 1 research provider, got %v", research)
	}
}

func TestEnabledProviders_StableTies(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Providers = []ProviderConfig{
		{ID: "first", Enabled: true, APIKey: "k", Model: "m", Role: RoleAnalyst, Priority: 1},
		{ID: "second", Enabled: true, APIKey: "k", Model: "m", Role: RoleAnalyst, Priority: 1},
	}

	got := cfg.EnabledProviders(RoleAnalyst)
	if got[0].ID != "first" {
		t.Errorf("equal priorities must keep config order, got %s first", got[0].ID)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("IDEASCOPE_TEST_KEY", "secret123")

	got := string(expandEnvVars([]byte("api_key: ${IDEASCOPE_TEST_KEY}")))
	if got != "api_key: secret123" {
		t.Errorf("expected substitution, got %q", got)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	got := string(expandEnvVars([]byte("model: ${IDEASCOPE_UNSET_VAR:-gpt-4o}")))
	if got != "model: gpt-4o" {
		t.Errorf("expected default value, got %q", got)
	}

	t.Setenv("IDEASCOPE_SET_VAR", "real")
	got = string(expandEnvVars([]byte("model: ${IDEASCOPE_SET_VAR:-fallback}")))
	if got != "model: real" {
		t.Errorf("expected env value over default, got %q", got)
	}
}
