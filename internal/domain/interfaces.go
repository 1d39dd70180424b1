package domain

import "context"

// Embedder converts free text into a fixed-dimension vector representation.
// Implementations carry no backend-specific types so any provider can be
// substituted without touching indexing or retrieval code.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Chunker splits a document into spans suitable for independent embedding.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorIndex persists (id, vector, payload) triples and supports
// nearest-neighbor search. Upsert is idempotent by id (last write wins);
// deleting an unknown id is a no-op.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []IndexEntry) error
	Query(ctx context.Context, vector []float64, topK int) ([]ScoredEntry, error)
	Delete(ctx context.Context, ids []string) error
	DeleteByParent(ctx context.Context, parentID string) error
}

// Generator produces a machine-parseable JSON response for a prompt.
type Generator interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string) ([]byte, error)
}

// Summarizer produces a brief preview of the provided text.
type Summarizer interface {
	Summarize(text string) string
}
