package vectorstore

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/arcline/ideascope/internal/domain"
)

func rec(id string, vec []float32, scheme domain.Scheme) domain.VectorRecord {
	return domain.VectorRecord{
		ID:        id,
		Embedding: vec,
		Scheme:    scheme,
		Metadata:  domain.IdeaRecord{ID: id, Score: 50, Verdict: domain.VerdictViable},
	}
}

func TestInsert_Basic(t *testing.T) {
	s := New(10)

	if err := s.Insert(rec("a", []float32{1, 2}, domain.SchemeHash)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 record, got %d", s.Len())
	}
	if s.Scheme() != domain.SchemeHash {
		t.Errorf("expected scheme %q, got %q", domain.SchemeHash, s.Scheme())
	}
}

func TestInsert_RejectsEmptyEmbedding(t *testing.T) {
	s := New(10)
	if err := s.Insert(rec("a", nil, domain.SchemeHash)); err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestInsert_RejectsMissingScheme(t *testing.T) {
	s := New(10)
	err := s.Insert(rec("a", []float32{1}, ""))
	if !errors.Is(err, domain.ErrSchemeMismatch) {
		t.Errorf("expected ErrSchemeMismatch, got %v", err)
	}
}

func TestInsert_RejectsCrossScheme(t *testing.T) {
	s := New(10)
	if err := s.Insert(rec("a", []float32{1, 2}, domain.SchemeHash)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Insert(rec("b", []float32{1, 2}, domain.RemoteScheme("text-embedding-3-small")))
	if !errors.Is(err, domain.ErrSchemeMismatch) {
		t.Errorf("expected ErrSchemeMismatch, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("rejected insert must not be stored, got %d records", s.Len())
	}
}

func TestInsert_RejectsDimMismatch(t *testing.T) {
	s := New(10)
	if err := s.Insert(rec("a", []float32{1, 2}, domain.SchemeHash)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Insert(rec("b", []float32{1, 2, 3}, domain.SchemeHash))
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestInsert_FIFOEviction(t *testing.T) {
	s := New(3)

	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("r%d", i)
		if err := s.Insert(rec(id, []float32{float32(i), 1}, domain.SchemeHash)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	if s.Len() != 3 {
		t.Fatalf("expected 3 records after eviction, got %d", s.Len())
	}

	all := s.All()
	if all[0].ID != "r1" {
		t.Errorf("expected oldest record r0 evicted, got first=%s", all[0].ID)
	}
	if all[2].ID != "r3" {
		t.Errorf("expected newest record last, got %s", all[2].ID)
	}
}

func TestInsert_NeverExceedsCapacity(t *testing.T) {
	s := New(5)
	for i := 0; i < 50; i++ {
		_ = s.Insert(rec(fmt.Sprintf("r%d", i), []float32{1}, domain.SchemeHash))
		if s.Len() > 5 {
			t.Fatalf("store exceeded capacity: %d", s.Len())
		}
	}
}

func TestInsert_Concurrent(t *testing.T) {
	s := New(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Insert(rec(fmt.Sprintf("g%d-r%d", n, j), []float32{1, 2}, domain.SchemeHash))
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("expected store at capacity 100, got %d", s.Len())
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	s := New(10)
	_ = s.Insert(rec("a", []float32{1}, domain.SchemeHash))

	all := s.All()
	all[0].ID = "mutated"

	if s.All()[0].ID != "a" {
		t.Error("All() must return a copy, store was mutated")
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	if got := New(0).Capacity(); got != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, got)
	}
	if got := New(-5).Capacity(); got != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, got)
	}
}

func TestStats(t *testing.T) {
	s := New(10)

	if got := s.Stats(); got.TotalAnalyses != 0 {
		t.Errorf("empty store stats: expected 0 analyses, got %d", got.TotalAnalyses)
	}

	scores := []int{80, 90, 40}
	verdicts := []domain.Verdict{domain.VerdictViable, domain.VerdictExceptional, domain.VerdictRisky}
	for i := range scores {
		_ = s.Insert(domain.VectorRecord{
			ID:        fmt.Sprintf("r%d", i),
			Embedding: []float32{1, 2},
			Scheme:    domain.SchemeHash,
			Metadata: domain.IdeaRecord{
				ID:      fmt.Sprintf("r%d", i),
				Score:   scores[i],
				Verdict: verdicts[i],
			},
		})
	}

	stats := s.Stats()
	if stats.TotalAnalyses != 3 {
		t.Errorf("expected 3 analyses, got %d", stats.TotalAnalyses)
	}
	if stats.AverageScore != 70 {
		t.Errorf("expected average 70, got %d", stats.AverageScore)
	}
	if stats.VerdictDistribution["Viable"] != 1 || stats.VerdictDistribution["Risky"] != 1 {
		t.Errorf("unexpected verdict distribution: %v", stats.VerdictDistribution)
	}
	if stats.Scheme != domain.SchemeHash {
		t.Errorf("expected scheme %q, got %q", domain.SchemeHash, stats.Scheme)
	}
}
