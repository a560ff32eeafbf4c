package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/usecase/retrieval"
)

// --- Mocks ---

type step struct {
	resp string
	err  error
}

// scriptProvider replays a fixed sequence of responses.
type scriptProvider struct {
	id    string
	steps []step
	calls int
	seen  [][]domain.ChatMessage
}

func (p *scriptProvider) ID() string { return p.id }

func (p *scriptProvider) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	p.seen = append(p.seen, messages)
	i := p.calls
	p.calls++
	if i >= len(p.steps) {
		return "", fmt.Errorf("provider %s: unexpected call %d", p.id, i)
	}
	return p.steps[i].resp, p.steps[i].err
}

type mockRetriever struct {
	mu      sync.Mutex
	ctx     retrieval.Context
	findErr error
	stored  []domain.IdeaRecord
}

func (m *mockRetriever) FindSimilar(_ context.Context, _ domain.IdeaInput) (retrieval.Context, error) {
	return m.ctx, m.findErr
}

func (m *mockRetriever) StoreAnalysis(_ context.Context, rec domain.IdeaRecord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, rec)
	return true
}

func testIdea() domain.IdeaInput {
	return domain.IdeaInput{
		Title:        "AI Meal Planner",
		Summary:      "Weekly meal plans from pantry photos",
		Audience:     "busy families",
		TeamStrength: 6,
		Traction:     "MVP",
	}
}

func overloaded() error {
	return fmt.Errorf("returned 503: %w", domain.ErrProviderOverloaded)
}

func newService(retr Retriever, providers []Provider, opts ...Option) *Service {
	opts = append([]Option{WithBackoffUnit(time.Millisecond)}, opts...)
	return New(providers, retr, zap.NewNop(), opts...)
}

// --- Tests ---

func TestAnalyze_FirstTrySuccess(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{{resp: validBody}}}
	retr := &mockRetriever{}
	svc := newService(retr, []Provider{p})

	got, err := svc.Analyze(context.Background(), testIdea())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Provider != "gemini" {
		t.Errorf("expected provider gemini, got %q", got.Provider)
	}
	if got.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", got.Attempts)
	}
	if got.AnalyzedAt.IsZero() {
		t.Error("expected AnalyzedAt set")
	}
}

func TestAnalyze_StoresResultBack(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{{resp: validBody}}}
	retr := &mockRetriever{}
	svc := newService(retr, []Provider{p})

	if _, err := svc.Analyze(context.Background(), testIdea()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(retr.stored) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(retr.stored))
	}
	rec := retr.stored[0]
	if rec.Title != "AI Meal Planner" {
		t.Errorf("expected idea title stored, got %q", rec.Title)
	}
	if rec.Verdict != domain.VerdictViable {
		t.Errorf("expected verdict Viable, got %q", rec.Verdict)
	}
	if rec.Score != 74 {
		t.Errorf("expected overall score 74, got %d", rec.Score)
	}
	if rec.TeamStrength != 6 || rec.Traction != "MVP" {
		t.Errorf("expected input metadata carried through, got %+v", rec)
	}
	if rec.ID == "" || rec.StoredAt.IsZero() {
		t.Error("expected id and timestamp assigned")
	}
}

// Transient failure twice then success: retried against the same
// provider, no fallback.
func TestAnalyze_RetriesTransientThenSucceeds(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{
		{err: overloaded()},
		{err: overloaded()},
		{resp: validBody},
	}}
	backup := &scriptProvider{id: "openai", steps: []step{{resp: validBody}}}
	retr := &mockRetriever{}
	svc := newService(retr, []Provider{p, backup})

	got, err := svc.Analyze(context.Background(), testIdea())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 calls to primary, got %d", p.calls)
	}
	if backup.calls != 0 {
		t.Errorf("fallback must not be invoked, got %d calls", backup.calls)
	}
	if got.Provider != "gemini" {
		t.Errorf("expected gemini, got %q", got.Provider)
	}
	if got.Attempts != 3 {
		t.Errorf("expected 3 attempts recorded, got %d", got.Attempts)
	}
}

// Transient failures beyond the retry bound advance to the next
// provider exactly once.
func TestAnalyze_FallsBackAfterRetriesExhausted(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{
		{err: overloaded()},
		{err: overloaded()},
		{err: overloaded()},
	}}
	backup := &scriptProvider{id: "openai", steps: []step{{resp: validBody}}}
	retr := &mockRetriever{}
	svc := newService(retr, []Provider{p, backup})

	got, err := svc.Analyze(context.Background(), testIdea())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("expected primary capped at 3 calls, got %d", p.calls)
	}
	if backup.calls != 1 {
		t.Errorf("expected exactly 1 fallback call, got %d", backup.calls)
	}
	if got.Provider != "openai" {
		t.Errorf("expected openai, got %q", got.Provider)
	}
}

func TestAnalyze_NoProviders(t *testing.T) {
	svc := newService(&mockRetriever{}, nil)

	_, err := svc.Analyze(context.Background(), testIdea())
	if !errors.Is(err, domain.ErrNoProvidersAvailable) {
		t.Errorf("expected ErrNoProvidersAvailable, got %v", err)
	}
}

func TestAnalyze_AllProvidersExhausted(t *testing.T) {
	p1 := &scriptProvider{id: "gemini", steps: []step{{err: errors.New("invalid key")}}}
	p2 := &scriptProvider{id: "openai", steps: []step{{err: errors.New("invalid key")}}}
	retr := &mockRetriever{}
	svc := newService(retr, []Provider{p1, p2})

	_, err := svc.Analyze(context.Background(), testIdea())
	if !errors.Is(err, domain.ErrNoProvidersAvailable) {
		t.Errorf("expected ErrNoProvidersAvailable, got %v", err)
	}
	if len(retr.stored) != 0 {
		t.Error("failed analysis must not be stored")
	}
}

// A malformed response advances to the next provider without retrying
// the same one.
func TestAnalyze_MalformedAdvancesWithoutRetry(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{{resp: "I love this idea!"}}}
	backup := &scriptProvider{id: "openai", steps: []step{{resp: validBody}}}
	svc := newService(&mockRetriever{}, []Provider{p, backup})

	got, err := svc.Analyze(context.Background(), testIdea())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("malformed response must not be retried, got %d calls", p.calls)
	}
	if got.Provider != "openai" {
		t.Errorf("expected openai, got %q", got.Provider)
	}
}

func TestAnalyze_HardErrorAdvancesImmediately(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{{err: errors.New("401 unauthorized")}}}
	backup := &scriptProvider{id: "openai", steps: []step{{resp: validBody}}}
	svc := newService(&mockRetriever{}, []Provider{p, backup})

	if _, err := svc.Analyze(context.Background(), testIdea()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("hard error must not be retried, got %d calls", p.calls)
	}
}

func TestAnalyze_FencedResponseParsed(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{
		{resp: "```json\n" + validBody + "\n```"},
	}}
	svc := newService(&mockRetriever{}, []Provider{p})

	got, err := svc.Analyze(context.Background(), testIdea())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IdeaTitle != "AI Meal Planner" {
		t.Errorf("expected parsed title, got %q", got.IdeaTitle)
	}
}

func TestAnalyze_ContextCancelsBackoff(t *testing.T) {
	p := &scriptProvider{id: "gemini", steps: []step{
		{err: overloaded()},
		{err: overloaded()},
		{err: overloaded()},
	}}
	retr := &mockRetriever{}
	// Long backoff unit: without cancellation this would sleep seconds.
	svc := New([]Provider{p}, retr, zap.NewNop(), WithBackoffUnit(10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := svc.Analyze(ctx, testIdea())
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("backoff did not honor cancellation, took %v", elapsed)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 call before canceled backoff, got %d", p.calls)
	}
}

func TestAnalyze_ResearchFailureNonFatal(t *testing.T) {
	research := &scriptProvider{id: "perplexity", steps: []step{{err: errors.New("timeout")}}}
	p := &scriptProvider{id: "gemini", steps: []step{{resp: validBody}}}
	svc := newService(&mockRetriever{}, []Provider{p}, WithResearchProvider(research))

	if _, err := svc.Analyze(context.Background(), testIdea()); err != nil {
		t.Fatalf("research failure must be non-fatal, got %v", err)
	}
	if research.calls != 1 {
		t.Errorf("expected 1 research call, got %d", research.calls)
	}
}

func TestAnalyze_ResearchEnrichesPrompt(t *testing.T) {
	research := &scriptProvider{id: "perplexity", steps: []step{
		{resp: "The meal planning market is crowded but growing."},
	}}
	p := &scriptProvider{id: "gemini", steps: []step{{resp: validBody}}}
	svc := newService(&mockRetriever{}, []Provider{p}, WithResearchProvider(research))

	if _, err := svc.Analyze(context.Background(), testIdea()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := p.seen[0][1].Content
	if !strings.Contains(user, "meal planning market is crowded") {
		t.Errorf("expected research brief in prompt, got %q", user)
	}
}

func TestAnalyze_RetrievalContextInPrompt(t *testing.T) {
	retr := &mockRetriever{ctx: retrieval.Context{
		HasSimilar: true,
		Insights:   "We've analyzed 2 similar ideas.",
		Patterns:   []string{"Similar ideas averaged 85/100 score"},
	}}
	p := &scriptProvider{id: "gemini", steps: []step{{resp: validBody}}}
	svc := newService(retr, []Provider{p})

	if _, err := svc.Analyze(context.Background(), testIdea()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := p.seen[0][1].Content
	if !strings.Contains(user, "averaged 85/100") {
		t.Errorf("expected retrieval patterns in prompt, got %q", user)
	}
}

func TestAnalyze_RetrievalFailureNonFatal(t *testing.T) {
	retr := &mockRetriever{findErr: errors.New("store unavailable")}
	p := &scriptProvider{id: "gemini", steps: []step{{resp: validBody}}}
	svc := newService(retr, []Provider{p})

	if _, err := svc.Analyze(context.Background(), testIdea()); err != nil {
		t.Fatalf("retrieval failure must be non-fatal, got %v", err)
	}
}

func TestAnalyze_InvalidIdea(t *testing.T) {
	svc := newService(&mockRetriever{}, []Provider{
		&scriptProvider{id: "gemini", steps: []step{{resp: validBody}}},
	})

	_, err := svc.Analyze(context.Background(), domain.IdeaInput{})
	if err == nil {
		t.Error("expected validation error for empty idea")
	}
}
