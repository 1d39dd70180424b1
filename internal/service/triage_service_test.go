package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/agent"
	"triage/internal/chunker"
	"triage/internal/domain"
	"triage/internal/embedding/hashing"
	"triage/internal/fields"
	"triage/internal/vectorstore/memory"
)

// scriptedGenerator answers the routing prompt and the creation prompt with
// different canned responses, keyed off the prompt text.
type scriptedGenerator struct {
	classify string
	create   string
	err      error
	prompts  []string
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) GenerateJSON(_ context.Context, prompt string) ([]byte, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	if strings.Contains(prompt, "intake router agent") {
		return []byte(g.classify), nil
	}
	return []byte(g.create), nil
}

func newPipeline(gen domain.Generator) (*TriageService, *RAGService) {
	rag := NewRAGService(hashing.NewEmbedder(hashing.DefaultDimension), chunker.NewParagraphChunker(), memory.NewIndex(), memory.NewIndex())
	return NewTriageService(agent.NewRouter(gen), agent.NewCreator(gen), rag), rag
}

func TestTriage(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path threads classification, grounding and fields", func(t *testing.T) {
		gen := &scriptedGenerator{
			classify: `{"type": "Bug", "confidence": 0.9, "target_agent": "DecompositionAgent", "reasoning": "describes a defect"}`,
			create:   `{"summary": "Login page slow", "description": "Login takes ten seconds."}`,
		}
		svc, rag := newPipeline(gen)
		_, ok := rag.IngestTickets(ctx, []domain.TicketRecord{
			{ID: "PROJ-1", Summary: "Login page slow", Description: "Ten second login.", Status: "Done", IssueType: "Bug"},
		})
		require.True(t, ok)

		res := svc.Triage(ctx, "the login page takes forever to load", fields.Default())
		assert.Equal(t, domain.TypeBug, res.Classification.Type)
		assert.Equal(t, domain.AgentDecomposition, res.Classification.TargetAgent)
		require.NotEmpty(t, res.Grounding.SimilarTickets)
		assert.Equal(t, "Login page slow", res.Fields["summary"])

		// grounding reaches the creation prompt
		require.Len(t, gen.prompts, 2)
		assert.Contains(t, gen.prompts[1], "PROJ-1")
	})

	t.Run("generator outage degrades every stage", func(t *testing.T) {
		gen := &scriptedGenerator{err: errors.New("backend down")}
		svc, _ := newPipeline(gen)

		res := svc.Triage(ctx, "please grant me access to the analytics dashboard", nil)
		assert.Equal(t, domain.TypeUnknown, res.Classification.Type)
		assert.Equal(t, 0.0, res.Classification.Confidence)
		assert.Equal(t, domain.AgentManual, res.Classification.TargetAgent)
		assert.Equal(t, "please grant me access to the analytics dashboard", res.Fields["description"])
	})

	t.Run("nil generator still produces a result", func(t *testing.T) {
		svc, _ := newPipeline(nil)
		res := svc.Triage(ctx, "short request", nil)
		assert.Equal(t, domain.AgentManual, res.Classification.TargetAgent)
		assert.Equal(t, "Task", res.Fields["issuetype"])
	})

	t.Run("custom schema constrains field keys", func(t *testing.T) {
		gen := &scriptedGenerator{
			classify: `{"type": "Story", "confidence": 0.8, "target_agent": "DecompositionAgent", "reasoning": "feature"}`,
			create:   `{"titel": "Export", "beschreibung": "CSV export", "summary": "ignored"}`,
		}
		svc, _ := newPipeline(gen)
		schema, err := fields.ParseJSON([]byte(`{"titel": "Kurzer Titel", "beschreibung": "Details"}`))
		require.NoError(t, err)

		res := svc.Triage(ctx, "we need a CSV export", schema)
		assert.Equal(t, map[string]any{"titel": "Export", "beschreibung": "CSV export"}, res.Fields)
	})
}

func TestCreateFieldsWithoutClassification(t *testing.T) {
	gen := &scriptedGenerator{create: `{"summary": "Rotate the TLS certs", "description": "Certs expire soon."}`}
	svc, _ := newPipeline(gen)

	got := svc.CreateFields(context.Background(), "rotate the TLS certs before they expire", fields.Default())
	assert.Equal(t, "Rotate the TLS certs", got["summary"])
	// only the creation prompt fired
	assert.Len(t, gen.prompts, 1)
}
