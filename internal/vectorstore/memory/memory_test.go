package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/domain"
)

func entry(id string, vec []float64, payload map[string]any) domain.IndexEntry {
	return domain.IndexEntry{ID: id, Vector: vec, Payload: payload}
}

func TestIndexUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites existing id", func(t *testing.T) {
		idx := NewIndex()
		require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
			entry("a", []float64{1, 0}, map[string]any{"text": "old"}),
		}))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
			entry("a", []float64{0, 1}, map[string]any{"text": "new"}),
		}))
		assert.Equal(t, 1, idx.Len())

		hits, err := idx.Query(ctx, []float64{0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "a", hits[0].ID)
		assert.Equal(t, "new", hits[0].Payload["text"])
		assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		idx := NewIndex()
		err := idx.Upsert(ctx, []domain.IndexEntry{entry("", []float64{1}, nil)})
		assert.Error(t, err)
	})
}

func TestIndexQuery(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
		entry("close", []float64{1, 0}, nil),
		entry("far", []float64{0, 1}, nil),
		entry("mid", []float64{0.7071, 0.7071}, nil),
	}))

	t.Run("orders by descending similarity", func(t *testing.T) {
		hits, err := idx.Query(ctx, []float64{1, 0}, 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, []string{"close", "mid", "far"}, []string{hits[0].ID, hits[1].ID, hits[2].ID})
	})

	t.Run("caps topK at size", func(t *testing.T) {
		hits, err := idx.Query(ctx, []float64{1, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, hits, 3)
	})

	t.Run("deterministic tie-break by id", func(t *testing.T) {
		tied := NewIndex()
		require.NoError(t, tied.Upsert(ctx, []domain.IndexEntry{
			entry("b", []float64{1, 0}, nil),
			entry("a", []float64{1, 0}, nil),
		}))
		for i := 0; i < 5; i++ {
			hits, err := tied.Query(ctx, []float64{1, 0}, 2)
			require.NoError(t, err)
			assert.Equal(t, "a", hits[0].ID)
			assert.Equal(t, "b", hits[1].ID)
		}
	})
}

func TestIndexDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id is a no-op", func(t *testing.T) {
		idx := NewIndex()
		require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("keep", []float64{1}, nil)}))
		require.NoError(t, idx.Delete(ctx, []string{"missing"}))
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("delete by parent cascades", func(t *testing.T) {
		idx := NewIndex()
		require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
			entry("doc1_chunk_0", []float64{1, 0}, map[string]any{"parent_id": "doc1"}),
			entry("doc1_chunk_1", []float64{0, 1}, map[string]any{"parent_id": "doc1"}),
			entry("doc2_chunk_0", []float64{1, 1}, map[string]any{"parent_id": "doc2"}),
		}))
		require.NoError(t, idx.DeleteByParent(ctx, "doc1"))
		assert.Equal(t, 1, idx.Len())

		hits, err := idx.Query(ctx, []float64{1, 0}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "doc2_chunk_0", hits[0].ID)
	})
}
