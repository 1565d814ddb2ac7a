package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"over", "budget"}, tokenize("Over  BUDGET"))
	assert.Empty(t, tokenize(""))
	assert.Empty(t, tokenize("   \t\n"))
}

func TestLexicalScore(t *testing.T) {
	t.Run("counts occurrences per token", func(t *testing.T) {
		score := lexicalScore("budget meeting about the budget", tokenize("budget"))
		assert.Equal(t, float32(2), score)
	})

	t.Run("sums across tokens", func(t *testing.T) {
		score := lexicalScore("budget and schedule", tokenize("budget schedule"))
		assert.Equal(t, float32(2), score)
	})

	t.Run("case-insensitive", func(t *testing.T) {
		score := lexicalScore("BUDGET talk", tokenize("budget"))
		assert.Equal(t, float32(1), score)
	})

	t.Run("substring matches count", func(t *testing.T) {
		score := lexicalScore("overbudgeting", tokenize("budget"))
		assert.Equal(t, float32(1), score)
	})

	t.Run("no tokens yields zero", func(t *testing.T) {
		assert.Equal(t, float32(0), lexicalScore("anything", nil))
	})

	t.Run("no matches yields zero", func(t *testing.T) {
		assert.Equal(t, float32(0), lexicalScore("phase two opportunity later", tokenize("budget")))
	})
}
