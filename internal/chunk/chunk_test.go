package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Empty(t *testing.T) {
	assert.Empty(t, Chunk("", 10))
	assert.Empty(t, Chunk("  \n\t  ", 10))
}

func TestChunk_SingleChunk(t *testing.T) {
	got := Chunk("one two   three\nfour", 10)
	assert.Equal(t, []string{"one two three four"}, got)
}

func TestChunk_SplitsAtBudget(t *testing.T) {
	got := Chunk("a b c d e f g", 3)
	assert.Equal(t, []string{"a b c", "d e f", "g"}, got)
}

func TestChunk_ExactMultiple(t *testing.T) {
	got := Chunk("a b c d", 2)
	assert.Equal(t, []string{"a b", "c d"}, got)
}

func TestChunk_LongWordOccupiesOwnChunk(t *testing.T) {
	long := strings.Repeat("x", 50)
	got := Chunk("a "+long+" b", 1)
	assert.Equal(t, []string{"a", long, "b"}, got)
}

func TestChunk_NonPositiveBudgetClamped(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Chunk("a b", 0))
	assert.Equal(t, []string{"a", "b"}, Chunk("a b", -5))
}

func TestChunk_SizeBoundAndCompleteness(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1037; i++ {
		b.WriteString("word")
		b.WriteString(strings.Repeat("z", i%7))
		if i%13 == 0 {
			b.WriteString("\n\n")
		} else {
			b.WriteString(" \t")
		}
	}
	content := b.String()

	for _, max := range []int{1, 2, 7, 100, 1000, 5000} {
		chunks := Chunk(content, max)
		require.NotEmpty(t, chunks)

		for _, c := range chunks {
			n := len(strings.Fields(c))
			assert.Greater(t, n, 0, "no chunk may be empty")
			assert.LessOrEqual(t, n, max)
		}

		assert.Equal(t, strings.Fields(content), strings.Fields(strings.Join(chunks, " ")),
			"joining chunks must reconstruct the word sequence (max=%d)", max)
	}
}

func TestChunk_DefaultBudget(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("w ", DefaultMaxTokens+1))
	chunks := Chunk(content, DefaultMaxTokens)
	require.Len(t, chunks, 2)
	assert.Equal(t, "w", chunks[1])
}

func TestMeasure(t *testing.T) {
	s := Measure([]string{"a b c", "d"})
	assert.Equal(t, Stats{Count: 2, Words: 4, MaxWords: 3}, s)
}
