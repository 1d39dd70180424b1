package vectorstore

import (
	"context"

	"triage/internal/domain"
)

// Index persists vectors and supports similarity search. Two logical
// indexes exist in this system (ticket history and reference documents),
// each its own Index instance pointed at its own collection.
type Index interface {
	Upsert(ctx context.Context, entries []domain.IndexEntry) error
	Query(ctx context.Context, vector []float64, topK int) ([]domain.ScoredEntry, error)
	Delete(ctx context.Context, ids []string) error
	DeleteByParent(ctx context.Context, parentID string) error
}

// Unavailable is the permanently degraded index used when the backing store
// cannot be configured. Grounding is an enhancement, not a hard dependency:
// every operation is a silent no-op returning empty results.
type Unavailable struct{}

func (Unavailable) Upsert(context.Context, []domain.IndexEntry) error { return nil }

func (Unavailable) Query(context.Context, []float64, int) ([]domain.ScoredEntry, error) {
	return nil, nil
}

func (Unavailable) Delete(context.Context, []string) error { return nil }

func (Unavailable) DeleteByParent(context.Context, string) error { return nil }
