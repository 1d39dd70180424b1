package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrequencySummarize(t *testing.T) {
	t.Run("keeps at most max sentences in original order", func(t *testing.T) {
		s := NewFrequency(2)
		text := "Alpha beta gamma. Delta epsilon. Alpha beta again. Zeta eta theta."
		got := s.Summarize(text)
		parts := strings.Split(got, ". ")
		assert.LessOrEqual(t, len(parts), 2+1)
		// selected sentences keep source order
		if i, j := strings.Index(got, "Alpha beta gamma"), strings.Index(got, "Alpha beta again"); i >= 0 && j >= 0 {
			assert.Less(t, i, j)
		}
	})

	t.Run("text without sentence punctuation is returned trimmed", func(t *testing.T) {
		s := NewFrequency(3)
		assert.Equal(t, "just a fragment", s.Summarize("  just a fragment  "))
	})

	t.Run("empty text yields empty preview", func(t *testing.T) {
		s := NewFrequency(3)
		assert.Equal(t, "", s.Summarize("   "))
	})

	t.Run("short text survives whole", func(t *testing.T) {
		s := NewFrequency(5)
		assert.Equal(t, "One sentence only.", s.Summarize("One sentence only."))
	})
}
