package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"triage/internal/domain"
)

// Index is an in-memory vector index using brute-force cosine similarity.
// Entries are keyed by id, so upserting an existing id overwrites it.
type Index struct {
	mu      sync.RWMutex
	entries map[string]domain.IndexEntry
}

func NewIndex() *Index {
	return &Index{entries: make(map[string]domain.IndexEntry)}
}

// Upsert stores entries by id, last write wins. The write is all-or-nothing:
// an invalid entry anywhere in the batch leaves the index untouched.
func (s *Index) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	for _, e := range entries {
		if e.ID == "" {
			return errors.New("entry id must not be empty")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

// Query returns the topK entries by descending similarity. Vectors are
// assumed L2-normalized, so the dot product is the cosine. Ties break on
// ascending id so identical inputs always return identical output.
func (s *Index) Query(_ context.Context, vector []float64, topK int) ([]domain.ScoredEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	scored := make([]domain.ScoredEntry, 0, len(s.entries))
	for id, e := range s.entries {
		scored = append(scored, domain.ScoredEntry{ID: id, Payload: e.Payload, Score: dot(e.Vector, vector)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Delete removes the given ids. Unknown ids are ignored.
func (s *Index) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

// DeleteByParent removes every entry whose payload parent_id matches.
func (s *Index) DeleteByParent(_ context.Context, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if p, ok := e.Payload["parent_id"].(string); ok && p == parentID {
			delete(s.entries, id)
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (s *Index) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
