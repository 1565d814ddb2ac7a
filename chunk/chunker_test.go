package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/clientpulse/kb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocID = core.ID("fathom:call-1")

func seg(start, end int64, speaker, text string) core.Segment {
	return core.Segment{StartMS: start, EndMS: end, Speaker: speaker, Text: text}
}

func TestNew(t *testing.T) {
	t.Run("valid budgets", func(t *testing.T) {
		c, err := New(500, 50)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("zero overlap is valid", func(t *testing.T) {
		_, err := New(100, 0)
		assert.NoError(t, err)
	})

	t.Run("zero target", func(t *testing.T) {
		_, err := New(0, 0)
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})

	t.Run("overlap equal to target", func(t *testing.T) {
		_, err := New(100, 100)
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(100, -1)
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})
}

func TestSplit_Windowing(t *testing.T) {
	c, err := New(20, 0)
	require.NoError(t, err)

	segments := []core.Segment{
		seg(0, 1000, "alice", "hello there"),  // 11 chars
		seg(1000, 2000, "bob", "how are you"), // 11 chars -> closes first chunk
		seg(2000, 3000, "alice", "ok"),        // 2 chars, fits in second window
	}

	chunks := c.Split(testDocID, segments)
	require.Len(t, chunks, 2)

	assert.Equal(t, "hello there", chunks[0].Text)
	assert.Equal(t, "how are you ok", chunks[1].Text)

	t.Run("sequence indices are dense from zero", func(t *testing.T) {
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Seq)
		}
	})

	t.Run("metadata inherited from contributing segments", func(t *testing.T) {
		assert.Equal(t, "alice", chunks[0].Speaker)
		assert.Equal(t, int64(0), chunks[0].StartMS)
		assert.Equal(t, int64(1000), chunks[0].EndMS)
		assert.Equal(t, "bob", chunks[1].Speaker)
		assert.Equal(t, int64(3000), chunks[1].EndMS)
	})
}

func TestSplit_OversizedSegment(t *testing.T) {
	c, err := New(10, 0)
	require.NoError(t, err)

	long := strings.Repeat("x", 50)
	chunks := c.Split(testDocID, []core.Segment{
		seg(0, 1, "a", "short"),
		seg(1, 2, "b", long),
		seg(2, 3, "c", "tail"),
	})

	// The oversized segment is never split; it forms its own chunk.
	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0].Text)
	assert.Equal(t, long, chunks[1].Text)
	assert.Equal(t, "tail", chunks[2].Text)

	for _, chunk := range chunks {
		if chunk.Text != long {
			assert.LessOrEqual(t, len(chunk.Text), 10)
		}
	}
}

func TestSplit_Overlap(t *testing.T) {
	c, err := New(20, 5)
	require.NoError(t, err)

	segments := []core.Segment{
		seg(0, 1000, "alice", "aaaaaaaaaabbbbbbbbbb"), // exactly 20 chars
		seg(1000, 2000, "bob", "cccccccccc"),
	}

	chunks := c.Split(testDocID, segments)
	require.Len(t, chunks, 2)

	// Second chunk is seeded with the trailing 5 chars of the first chunk's
	// last contributing segment, keeping its speaker and offsets.
	assert.Equal(t, "aaaaaaaaaabbbbbbbbbb", chunks[0].Text)
	assert.Equal(t, "bbbbb cccccccccc", chunks[1].Text)
	assert.Equal(t, "alice", chunks[1].Speaker)
	assert.Equal(t, int64(0), chunks[1].StartMS)
	assert.Equal(t, int64(2000), chunks[1].EndMS)
}

func TestSplit_OverlapRuneBoundary(t *testing.T) {
	c, err := New(20, 4)
	require.NoError(t, err)

	segments := []core.Segment{
		seg(0, 1000, "alice", "ordered a café世"),
		seg(1000, 2000, "bob", "next segment here"),
	}

	chunks := c.Split(testDocID, segments)
	require.Len(t, chunks, 2)

	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Text), "chunk %d text must be valid UTF-8", chunk.Seq)
	}

	// The 4-byte tail of the first segment would start inside the two-byte
	// "é"; the seed advances to the next rune boundary instead.
	assert.Equal(t, "世 next segment here", chunks[1].Text)
}

func TestSplit_BlankSegments(t *testing.T) {
	c := Default()

	t.Run("all blank yields zero chunks", func(t *testing.T) {
		chunks := c.Split(testDocID, []core.Segment{
			seg(0, 1, "a", ""),
			seg(1, 2, "b", "   \t"),
		})
		assert.Empty(t, chunks)
	})

	t.Run("no input yields zero chunks", func(t *testing.T) {
		assert.Empty(t, c.Split(testDocID, nil))
	})

	t.Run("blanks are skipped between real segments", func(t *testing.T) {
		chunks := c.Split(testDocID, []core.Segment{
			seg(0, 1, "a", "hello"),
			seg(1, 2, "b", "  "),
			seg(2, 3, "c", "world"),
		})
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0].Text)
	})
}

func TestSplit_Idempotent(t *testing.T) {
	c := Default()
	segments := []core.Segment{
		seg(0, 1000, "alice", "we may go over budget soon"),
		seg(1000, 2000, "bob", "let's review the numbers"),
	}

	first := c.Split(testDocID, segments)
	second := c.Split(testDocID, segments)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestSplit_Properties(t *testing.T) {
	c, err := New(30, 8)
	require.NoError(t, err)

	segments := []core.Segment{
		seg(0, 1, "a", "the quick brown fox"),
		seg(1, 2, "b", ""),
		seg(2, 3, "c", "jumps over"),
		seg(3, 4, "d", "the lazy dog near the river bank"), // oversized alone (32 > 30)
		seg(4, 5, "e", "and swims"),
	}

	chunks := c.Split(testDocID, segments)
	require.NotEmpty(t, chunks)

	lastSeq := -1
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Text)
		assert.GreaterOrEqual(t, chunk.TokenEstimate, 1)
		assert.Greater(t, chunk.Seq, lastSeq)
		lastSeq = chunk.Seq
		require.NoError(t, core.ValidateChunk(chunk))
	}
}
