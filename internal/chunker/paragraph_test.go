package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/domain"
)

func TestParagraphChunker(t *testing.T) {
	c := NewParagraphChunker()

	t.Run("splits on blank lines in order", func(t *testing.T) {
		doc := domain.Document{ID: "doc1", Content: "first paragraph\n\nsecond paragraph\n\n\nthird"}
		chunks, err := c.Chunk(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "first paragraph", chunks[0].Text)
		assert.Equal(t, "second paragraph", chunks[1].Text)
		assert.Equal(t, "third", chunks[2].Text)
	})

	t.Run("dense ordinals and stable ids", func(t *testing.T) {
		doc := domain.Document{ID: "doc1", Content: "a\n\n   \n\nb"}
		chunks, err := c.Chunk(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		for i, ch := range chunks {
			assert.Equal(t, i, ch.Ordinal)
			assert.Equal(t, ChunkID("doc1", i), ch.ID)
			assert.Equal(t, "doc1", ch.ParentID)
		}
	})

	t.Run("no blank lines yields single trimmed chunk", func(t *testing.T) {
		doc := domain.Document{ID: "d", Content: "  one single paragraph\nwith a soft break  "}
		chunks, err := c.Chunk(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "one single paragraph\nwith a soft break", chunks[0].Text)
	})

	t.Run("empty and whitespace input yield zero chunks", func(t *testing.T) {
		for _, content := range []string{"", "   ", "\n\n\n", " \t \n\n  "} {
			chunks, err := c.Chunk(domain.Document{ID: "d", Content: content})
			require.NoError(t, err)
			assert.Empty(t, chunks)
		}
	})

	t.Run("windows line endings", func(t *testing.T) {
		doc := domain.Document{ID: "d", Content: "alpha\r\n\r\nbeta"}
		chunks, err := c.Chunk(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "alpha", chunks[0].Text)
		assert.Equal(t, "beta", chunks[1].Text)
	})

	t.Run("spans are non-empty and trimmed", func(t *testing.T) {
		doc := domain.Document{ID: "d", Content: "  x  \n\n\t\n\n  y z  \n\n"}
		chunks, err := c.Chunk(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		for _, ch := range chunks {
			assert.NotEmpty(t, ch.Text)
			assert.Equal(t, strings.TrimSpace(ch.Text), ch.Text)
		}
	})
}
