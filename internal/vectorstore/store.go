// Package vectorstore implements the bounded in-memory vector store
// backing idea retrieval. Full-scan search is fine at this size; the
// store holds at most a few thousand records.
package vectorstore

import (
	"fmt"
	"sync"

	"github.com/arcline/ideascope/internal/domain"
)

// DefaultCapacity bounds the store when no capacity is configured.
const DefaultCapacity = 1000

// Store is an append-only, capacity-bounded list of vector records.
// When full, the oldest record is evicted first. All records share one
// embedding scheme and one dimensionality; inserts that disagree are
// rejected rather than silently producing meaningless similarities.
type Store struct {
	mu       sync.Mutex
	records  []domain.VectorRecord
	capacity int
	scheme   domain.Scheme
	dims     int
}

// New creates a store with the given capacity. Non-positive capacity
// falls back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Insert appends a record, evicting the oldest one when at capacity.
// The capacity check, eviction, and append happen under one lock so
// concurrent inserts cannot overfill the store.
func (s *Store) Insert(rec domain.VectorRecord) error {
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("empty embedding for record %q", rec.ID)
	}
	if rec.Scheme == "" {
		return fmt.Errorf("record %q has no embedding scheme: %w", rec.ID, domain.ErrSchemeMismatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		s.scheme = rec.Scheme
		s.dims = len(rec.Embedding)
	} else {
		if rec.Scheme != s.scheme {
			return fmt.Errorf("store holds %q vectors, got %q: %w",
				s.scheme, rec.Scheme, domain.ErrSchemeMismatch)
		}
		if len(rec.Embedding) != s.dims {
			return fmt.Errorf("store holds %d-dim vectors, got %d: %w",
				s.dims, len(rec.Embedding), domain.ErrVectorDimMismatch)
		}
	}

	if len(s.records) >= s.capacity {
		evicted := len(s.records) - s.capacity + 1
		s.records = append(s.records[:0], s.records[evicted:]...)
	}
	s.records = append(s.records, rec)
	return nil
}

// All returns a snapshot of the stored records. The slice is a copy;
// callers can hold it across their own blocking work without pinning
// the store lock.
func (s *Store) All() []domain.VectorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.VectorRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Capacity returns the configured record bound.
func (s *Store) Capacity() int { return s.capacity }

// Scheme returns the embedding scheme of the stored vectors, empty while
// the store is empty.
func (s *Store) Scheme() domain.Scheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheme
}

// Stats summarizes the store contents.
type Stats struct {
	TotalAnalyses       int            `json:"total_analyses"`
	AverageScore        int            `json:"average_score"`
	VerdictDistribution map[string]int `json:"verdict_distribution,omitempty"`
	Scheme              domain.Scheme  `json:"scheme,omitempty"`
}

// Stats computes aggregate statistics over the stored analyses.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return Stats{}
	}

	var sum int
	verdicts := make(map[string]int)
	for _, r := range s.records {
		sum += r.Metadata.Score
		verdicts[string(r.Metadata.Verdict)]++
	}

	n := len(s.records)
	return Stats{
		TotalAnalyses:       n,
		AverageScore:        (sum + n/2) / n,
		VerdictDistribution: verdicts,
		Scheme:              s.scheme,
	}
}
