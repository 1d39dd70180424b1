package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"triage/internal/fields"
)

func TestHighlightMatches(t *testing.T) {
	t.Run("emphasizes shared words case-insensitively", func(t *testing.T) {
		got := highlightMatches("The Login page is slow", "login performance issue")
		want := "The " + highlightStyle.Render("Login") + " page is slow"
		assert.Equal(t, want, got)
	})

	t.Run("no shared vocabulary passes through", func(t *testing.T) {
		text := "Billing runs nightly batches."
		assert.Equal(t, text, highlightMatches(text, "login issue"))
	})

	t.Run("empty query passes through", func(t *testing.T) {
		assert.Equal(t, "some text", highlightMatches("some text", "  !? "))
	})

	t.Run("punctuation and spacing survive", func(t *testing.T) {
		got := highlightMatches("login, then export!", "login export")
		want := highlightStyle.Render("login") + ", then " + highlightStyle.Render("export") + "!"
		assert.Equal(t, want, got)
	})
}

func TestRenderFields(t *testing.T) {
	schema := fields.Schema{
		{Key: "titel", Hint: "string"},
		{Key: "beschreibung", Hint: "string"},
	}

	t.Run("follows schema order", func(t *testing.T) {
		got := renderFields(map[string]any{"beschreibung": "b", "titel": "a"}, schema)
		assert.Equal(t, "  titel: \"a\"\n  beschreibung: \"b\"\n", got)
	})

	t.Run("skips absent keys", func(t *testing.T) {
		got := renderFields(map[string]any{"titel": "a"}, schema)
		assert.NotContains(t, got, "beschreibung")
	})

	t.Run("empty mapping", func(t *testing.T) {
		assert.Equal(t, "  (none)\n", renderFields(nil, schema))
	})
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "Summary: a Description: b", flatten("Summary: a\nDescription:  b"))
}
