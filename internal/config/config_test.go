package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "hashing", cfg.Embedder.Type)
		assert.Equal(t, "memory", cfg.VectorStore.Type)
		assert.Equal(t, "jira-history", cfg.VectorStore.TicketCollection)
		assert.Equal(t, "architecture-docs", cfg.VectorStore.DocCollection)
		assert.Equal(t, 3, cfg.Retrieval.TicketTopK)
		assert.Equal(t, 5, cfg.Retrieval.DocTopK)
	})

	t.Run("reads yaml and applies defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: gemini
vector_store:
  type: qdrant
  qdrant:
    url: http://localhost:6333
generator:
  type: gemini
retrieval:
  doc_top_k: 8
`), 0o644))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.Embedder.Type)
		require.NotNil(t, cfg.Embedder.Gemini)
		assert.Equal(t, "GOOGLE_API_KEY", cfg.Embedder.Gemini.APIKeyEnv)
		assert.Equal(t, 768, cfg.Embedder.Gemini.Dimension)
		require.NotNil(t, cfg.VectorStore.Qdrant)
		assert.Equal(t, "QDRANT_API_KEY", cfg.VectorStore.Qdrant.APIKeyEnv)
		require.NotNil(t, cfg.Generator.Gemini)
		assert.Equal(t, "gemini-2.0-flash-exp", cfg.Generator.Gemini.Model)
		assert.Equal(t, 8, cfg.Retrieval.DocTopK)
		assert.Equal(t, 3, cfg.Retrieval.TicketTopK)
	})

	t.Run("invalid yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Retrieval.TicketTopK = 7
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Retrieval.TicketTopK)
	assert.Equal(t, cfg.VectorStore.TicketCollection, loaded.VectorStore.TicketCollection)
}
