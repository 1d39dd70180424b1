package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/config"
	"triage/internal/domain"
)

func TestAssemble(t *testing.T) {
	t.Run("offline stack works end to end", func(t *testing.T) {
		cfg := &config.AppConfig{
			Embedder:    config.EmbedderConfig{Type: "hashing"},
			VectorStore: config.VectorStoreConfig{Type: "memory"},
			Generator:   config.GeneratorConfig{Type: "none"},
			Catalog:     config.CatalogConfig{Path: filepath.Join(t.TempDir(), "catalog.db"), PreviewSentences: 2},
			Retrieval:   config.RetrievalConfig{TicketTopK: 3, DocTopK: 5},
		}
		a := Assemble(cfg)
		t.Cleanup(a.Close)
		require.NotNil(t, a.Catalog)

		ctx := context.Background()
		_, ok := a.RAG.IngestTickets(ctx, []domain.TicketRecord{
			{ID: "PROJ-1", Summary: "Login page slow", Description: "Ten seconds to log in.", Status: "Done", IssueType: "Bug"},
		})
		require.True(t, ok)

		res := a.Triage.Triage(ctx, "login is extremely slow for everyone", nil)
		assert.Equal(t, domain.AgentManual, res.Classification.TargetAgent)
		assert.NotEmpty(t, res.Grounding.SimilarTickets)
		assert.Equal(t, "Task", res.Fields["issuetype"])

		items, err := a.RAG.ListKnowledge()
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("misconfigured backends degrade instead of failing", func(t *testing.T) {
		cfg := &config.AppConfig{
			Embedder:    config.EmbedderConfig{Type: "gemini", Gemini: &config.GeminiEmbedderConfig{APIKeyEnv: "TRIAGE_TEST_NO_SUCH_KEY"}},
			VectorStore: config.VectorStoreConfig{Type: "qdrant"},
			Generator:   config.GeneratorConfig{Type: "gemini", Gemini: &config.GeneratorBackendConfig{APIKeyEnv: "TRIAGE_TEST_NO_SUCH_KEY"}},
			Catalog:     config.CatalogConfig{Path: filepath.Join(t.TempDir(), "catalog.db")},
		}
		a := Assemble(cfg)
		t.Cleanup(a.Close)
		assert.Equal(t, "hashing", a.Embedder.Name())

		res := a.Triage.Triage(context.Background(), "anything at all", nil)
		assert.Equal(t, domain.TypeUnknown, res.Classification.Type)
		assert.True(t, res.Grounding.Empty())
	})

	t.Run("describe names the stack", func(t *testing.T) {
		cfg := &config.AppConfig{
			Embedder:    config.EmbedderConfig{Type: "hashing"},
			VectorStore: config.VectorStoreConfig{Type: "memory"},
			Generator:   config.GeneratorConfig{Type: "none"},
			Catalog:     config.CatalogConfig{Path: filepath.Join(t.TempDir(), "catalog.db")},
		}
		a := Assemble(cfg)
		t.Cleanup(a.Close)
		assert.Equal(t, "embedder=hashing store=memory generator=none", a.Describe())
	})
}
