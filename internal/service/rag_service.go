package service

import (
	"context"

	"triage/internal/catalog"
	"triage/internal/domain"
	"triage/internal/logger"
)

// Default grounding budgets per query.
const (
	DefaultTicketTopK = 3
	DefaultDocTopK    = 5
)

// RAGService owns the two vector indexes and everything that flows through
// them: chunking and embedding on the way in, nearest-neighbor grounding on
// the way out. Index failures degrade instead of propagating, so callers get
// booleans and possibly-empty groundings rather than errors.
type RAGService struct {
	embedder   domain.Embedder
	chunker    domain.Chunker
	tickets    domain.VectorIndex
	docs       domain.VectorIndex
	registry   *catalog.Catalog
	preview    domain.Summarizer
	ticketTopK int
	docTopK    int
}

// Option customizes an optional aspect of a RAGService.
type Option func(*RAGService)

// WithCatalog attaches a knowledge-item registry that mirrors every ingest
// and delete. Without it the service still works, it just cannot enumerate
// what it holds.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *RAGService) { s.registry = c }
}

// WithPreview attaches a summarizer used to record short previews of
// ingested documents in the catalog.
func WithPreview(sum domain.Summarizer) Option {
	return func(s *RAGService) { s.preview = sum }
}

// WithTopK overrides the per-query grounding budgets.
func WithTopK(ticketTopK, docTopK int) Option {
	return func(s *RAGService) {
		if ticketTopK > 0 {
			s.ticketTopK = ticketTopK
		}
		if docTopK > 0 {
			s.docTopK = docTopK
		}
	}
}

// NewRAGService wires an embedder, a chunker and the two indexes together.
func NewRAGService(embedder domain.Embedder, ch domain.Chunker, tickets, docs domain.VectorIndex, opts ...Option) *RAGService {
	s := &RAGService{
		embedder:   embedder,
		chunker:    ch,
		tickets:    tickets,
		docs:       docs,
		ticketTopK: DefaultTicketTopK,
		docTopK:    DefaultDocTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestDocuments chunks, embeds and indexes each document. A document with
// the same ID as a previous one supersedes it entirely, including stale
// chunks the new version no longer produces. Returns the number of chunks
// indexed and whether every document made it in.
func (s *RAGService) IngestDocuments(ctx context.Context, documents []domain.Document) (int, bool) {
	indexed := 0
	ok := true
	for _, doc := range documents {
		chunks, err := s.chunker.Chunk(doc)
		if err != nil {
			logger.Warnf("chunking %s failed: %v", doc.ID, err)
			ok = false
			continue
		}
		if len(chunks) == 0 {
			if err := s.docs.DeleteByParent(ctx, doc.ID); err != nil {
				logger.Warnf("clearing previous chunks of %s failed: %v", doc.ID, err)
				ok = false
				continue
			}
			s.recordDocument(doc, 0)
			continue
		}
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		// Embed before touching the index: a failed re-upload must leave
		// the previous version retrievable.
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warnf("embedding %s failed: %v", doc.ID, err)
			ok = false
			continue
		}
		entries := make([]domain.IndexEntry, len(chunks))
		for i, ch := range chunks {
			entries[i] = domain.IndexEntry{
				ID:     ch.ID,
				Vector: vectors[i],
				Payload: map[string]any{
					"text":        ch.Text,
					"source":      doc.Source,
					"parent_id":   ch.ParentID,
					"chunk_index": ch.Ordinal,
				},
			}
		}
		// The replacement batch is ready; only now drop the previous
		// version, so a shorter re-upload cannot leave orphans behind.
		if err := s.docs.DeleteByParent(ctx, doc.ID); err != nil {
			logger.Warnf("clearing previous chunks of %s failed: %v", doc.ID, err)
			ok = false
			continue
		}
		if err := s.docs.Upsert(ctx, entries); err != nil {
			logger.Warnf("indexing %s failed: %v", doc.ID, err)
			ok = false
			continue
		}
		indexed += len(entries)
		s.recordDocument(doc, len(entries))
	}
	return indexed, ok
}

// IngestTickets embeds and indexes past tickets in bulk, one entry per
// ticket. Returns the number indexed and whether every ticket made it in.
func (s *RAGService) IngestTickets(ctx context.Context, tickets []domain.TicketRecord) (int, bool) {
	if len(tickets) == 0 {
		return 0, true
	}
	texts := make([]string, len(tickets))
	for i, t := range tickets {
		texts[i] = t.Text()
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warnf("embedding tickets failed: %v", err)
		return 0, false
	}
	entries := make([]domain.IndexEntry, len(tickets))
	for i, t := range tickets {
		entries[i] = domain.IndexEntry{
			ID:     t.ID,
			Vector: vectors[i],
			Payload: map[string]any{
				"text":      texts[i],
				"status":    t.Status,
				"issuetype": t.IssueType,
			},
		}
	}
	if err := s.tickets.Upsert(ctx, entries); err != nil {
		logger.Warnf("indexing tickets failed: %v", err)
		return 0, false
	}
	for _, t := range tickets {
		s.recordTicket(t)
	}
	return len(entries), true
}

// DeleteDocument removes every chunk of the document and its catalog entry.
// Deleting an unknown document succeeds.
func (s *RAGService) DeleteDocument(ctx context.Context, id string) bool {
	if err := s.docs.DeleteByParent(ctx, id); err != nil {
		logger.Warnf("deleting document %s failed: %v", id, err)
		return false
	}
	s.unrecord(id)
	return true
}

// DeleteTicket removes a single ticket entry and its catalog entry.
// Deleting an unknown ticket succeeds.
func (s *RAGService) DeleteTicket(ctx context.Context, id string) bool {
	if err := s.tickets.Delete(ctx, []string{id}); err != nil {
		logger.Warnf("deleting ticket %s failed: %v", id, err)
		return false
	}
	s.unrecord(id)
	return true
}

// Retrieve embeds the query once and searches both indexes. The two halves
// degrade independently: an unavailable index empties its half while the
// other still contributes.
func (s *RAGService) Retrieve(ctx context.Context, query string) domain.Grounding {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warnf("embedding query failed, retrieval degraded: %v", err)
		return domain.Grounding{}
	}
	var g domain.Grounding
	hits, err := s.tickets.Query(ctx, vector, s.ticketTopK)
	if err != nil {
		logger.Warnf("ticket retrieval degraded: %v", err)
	} else {
		for _, h := range hits {
			g.SimilarTickets = append(g.SimilarTickets, domain.RetrievedTicket{
				ID:        h.ID,
				Text:      payloadString(h.Payload, "text"),
				Status:    payloadString(h.Payload, "status"),
				IssueType: payloadString(h.Payload, "issuetype"),
				Score:     h.Score,
			})
		}
	}
	hits, err = s.docs.Query(ctx, vector, s.docTopK)
	if err != nil {
		logger.Warnf("doc retrieval degraded: %v", err)
	} else {
		for _, h := range hits {
			if text := payloadString(h.Payload, "text"); text != "" {
				g.DocExcerpts = append(g.DocExcerpts, text)
			}
		}
	}
	return g
}

// ListKnowledge enumerates everything registered in the catalog.
func (s *RAGService) ListKnowledge() ([]catalog.Item, error) {
	if s.registry == nil {
		return nil, nil
	}
	return s.registry.List()
}

func (s *RAGService) recordDocument(doc domain.Document, chunks int) {
	if s.registry == nil {
		return
	}
	preview := ""
	if s.preview != nil {
		preview = s.preview.Summarize(doc.Content)
	}
	err := s.registry.Upsert(catalog.Item{
		ID:         doc.ID,
		Kind:       catalog.KindDocument,
		Title:      doc.ID,
		Source:     doc.Source,
		SizeBytes:  int64(len(doc.Content)),
		ChunkCount: chunks,
		Preview:    preview,
	})
	if err != nil {
		logger.Warnf("cataloging document %s failed: %v", doc.ID, err)
	}
}

func (s *RAGService) recordTicket(t domain.TicketRecord) {
	if s.registry == nil {
		return
	}
	err := s.registry.Upsert(catalog.Item{
		ID:        t.ID,
		Kind:      catalog.KindTicket,
		Title:     t.Summary,
		Status:    t.Status,
		IssueType: t.IssueType,
		SizeBytes: int64(len(t.Description)),
	})
	if err != nil {
		logger.Warnf("cataloging ticket %s failed: %v", t.ID, err)
	}
}

func (s *RAGService) unrecord(id string) {
	if s.registry == nil {
		return
	}
	if err := s.registry.Delete(id); err != nil {
		logger.Warnf("removing %s from catalog failed: %v", id, err)
	}
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
