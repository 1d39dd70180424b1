package fields

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	t.Run("preserves declaration order", func(t *testing.T) {
		schema, err := ParseJSON([]byte(`{"zeta": "string", "alpha": "string", "mid": "number"}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, schema.Keys())
	})

	t.Run("rejects non-object", func(t *testing.T) {
		_, err := ParseJSON([]byte(`["summary"]`))
		assert.Error(t, err)
	})

	t.Run("rejects non-string hints", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{"summary": 3}`))
		assert.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	schema := Default()
	assert.Equal(t,
		[]string{"summary", "description", "issuetype", "priority", "labels", "acceptance_criteria", "components"},
		schema.Keys())
}

func TestSchemaJSON(t *testing.T) {
	schema := Schema{{Key: "summary", Hint: "string"}, {Key: "points", Hint: "number"}}
	rendered := schema.JSON()

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, map[string]string{"summary": "string", "points": "number"}, decoded)
	// ordered rendering: summary appears before points
	assert.Less(t, strings.Index(rendered, "summary"), strings.Index(rendered, "points"))
}

func TestConform(t *testing.T) {
	t.Run("drops keys outside the schema", func(t *testing.T) {
		schema := Schema{{Key: "summary"}, {Key: "description"}}
		out := schema.Conform(map[string]any{
			"summary":     "s",
			"description": "d",
			"invented":    "x",
		})
		assert.Equal(t, map[string]any{"summary": "s", "description": "d"}, out)
	})

	t.Run("missing keys stay absent", func(t *testing.T) {
		schema := Schema{{Key: "summary"}, {Key: "priority"}}
		out := schema.Conform(map[string]any{"summary": "s"})
		assert.Equal(t, map[string]any{"summary": "s"}, out)
		assert.NotContains(t, out, "priority")
	})

	t.Run("output keys are always a subset of schema keys", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for trial := 0; trial < 50; trial++ {
			var schema Schema
			for i := 0; i < rng.Intn(6); i++ {
				schema = append(schema, Field{Key: fmt.Sprintf("field_%d", i), Hint: "string"})
			}
			generated := map[string]any{}
			for i := 0; i < rng.Intn(10); i++ {
				generated[fmt.Sprintf("field_%d", rng.Intn(12))] = i
			}
			out := schema.Conform(generated)
			for k := range out {
				assert.True(t, schema.Has(k), "key %q escaped the schema", k)
			}
		}
	})
}
