package chunker

import (
	"strconv"
	"strings"

	"triage/internal/domain"
)

// ParagraphChunker splits document content on blank-line boundaries.
// Retrieval quality is secondary to predictability here: spans map 1:1 to
// the paragraphs an author wrote, ordinals are dense from 0 and stable for
// a given content, and re-ingestion regenerates the exact same ids.
type ParagraphChunker struct{}

func NewParagraphChunker() *ParagraphChunker { return &ParagraphChunker{} }

func (c *ParagraphChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	normalized := strings.ReplaceAll(document.Content, "\r\n", "\n")
	paragraphs := strings.Split(normalized, "\n\n")

	var chunks []domain.Chunk
	ordinal := 0
	for _, p := range paragraphs {
		text := strings.TrimSpace(p)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:       ChunkID(document.ID, ordinal),
			ParentID: document.ID,
			Text:     text,
			Ordinal:  ordinal,
		})
		ordinal++
	}
	return chunks, nil
}

// ChunkID derives the stable index id for a chunk of the given parent.
func ChunkID(parentID string, ordinal int) string {
	return parentID + "_chunk_" + strconv.Itoa(ordinal)
}
