package service

import (
	"context"

	"triage/internal/agent"
	"triage/internal/domain"
	"triage/internal/fields"
)

// TriageService runs the full intake pipeline: classify the request, ground
// it against past tickets and documentation, then draft schema-constrained
// issue fields. Like everything downstream of it, it degrades instead of
// failing: the worst case is a Manual-routed classification with fallback
// fields.
type TriageService struct {
	router  *agent.Router
	creator *agent.Creator
	rag     *RAGService
}

// NewTriageService assembles the pipeline from its three stages.
func NewTriageService(router *agent.Router, creator *agent.Creator, rag *RAGService) *TriageService {
	return &TriageService{router: router, creator: creator, rag: rag}
}

// Triage processes one raw request end to end. An empty schema drafts fields
// against the default tracker schema.
func (s *TriageService) Triage(ctx context.Context, raw string, schema fields.Schema) domain.TriageResult {
	cls := s.router.Classify(ctx, raw)
	grounding := s.rag.Retrieve(ctx, raw)
	return domain.TriageResult{
		Classification: cls,
		Grounding:      grounding,
		Fields:         s.creator.CreateFields(ctx, raw, schema, grounding),
	}
}

// Classify exposes just the routing stage.
func (s *TriageService) Classify(ctx context.Context, raw string) domain.Classification {
	return s.router.Classify(ctx, raw)
}

// CreateFields retrieves grounding and drafts fields without classifying.
func (s *TriageService) CreateFields(ctx context.Context, raw string, schema fields.Schema) map[string]any {
	return s.creator.CreateFields(ctx, raw, schema, s.rag.Retrieve(ctx, raw))
}

// Retrieve exposes just the grounding stage.
func (s *TriageService) Retrieve(ctx context.Context, query string) domain.Grounding {
	return s.rag.Retrieve(ctx, query)
}
