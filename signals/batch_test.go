package signals

import (
	"testing"

	"github.com/clientpulse/kb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchChunk(seq int, text string) *core.Chunk {
	return &core.Chunk{
		Id:         core.ChunkIDFor("fathom:meeting-9", seq, text),
		DocumentId: "fathom:meeting-9",
		Seq:        seq,
		Text:       text,
	}
}

func TestScoreBatch_BestChunkPerRule(t *testing.T) {
	chunks := []*core.Chunk{
		batchChunk(0, "We talked about the budget once."),
		batchChunk(1, "The budget is over budget and there is a cost overrun."),
		batchChunk(2, "Nothing interesting in this one."),
	}

	alerts := ScoreBatch(chunks)

	require.Len(t, alerts, 1)
	assert.Equal(t, "budget_risk", alerts[0].Rule)
	assert.Same(t, chunks[1], alerts[0].Chunk)
	// "budget" twice, "over budget" once, "cost overrun" once
	assert.Equal(t, float32(4), alerts[0].Score)
}

func TestScoreBatch_ZeroScoreExcluded(t *testing.T) {
	chunks := []*core.Chunk{
		batchChunk(0, "The weather is nice today."),
		batchChunk(1, "We shipped the release notes."),
	}
	assert.Empty(t, ScoreBatch(chunks))
}

func TestScoreBatch_TieKeepsEarlierChunk(t *testing.T) {
	chunks := []*core.Chunk{
		batchChunk(0, "There is a delay."),
		batchChunk(1, "There is a delay."),
	}

	alerts := ScoreBatch(chunks)

	require.Len(t, alerts, 1)
	assert.Equal(t, "schedule_risk", alerts[0].Rule)
	assert.Same(t, chunks[0], alerts[0].Chunk)
}

func TestScoreBatch_MultipleRules(t *testing.T) {
	chunks := []*core.Chunk{
		batchChunk(0, "The client is frustrated and unhappy with the delay."),
		batchChunk(1, "They asked about a support retainer and a new project."),
	}

	alerts := ScoreBatch(chunks)

	require.Len(t, alerts, 3)
	assert.Equal(t, "schedule_risk", alerts[0].Rule)
	assert.Equal(t, "satisfaction_risk", alerts[1].Rule)
	assert.Equal(t, "opportunity", alerts[2].Rule)
	assert.Same(t, chunks[0], alerts[0].Chunk)
	assert.Same(t, chunks[0], alerts[1].Chunk)
	assert.Same(t, chunks[1], alerts[2].Chunk)
}

func TestScoreBatch_EmptyAndNilChunks(t *testing.T) {
	assert.Empty(t, ScoreBatch(nil))
	assert.Empty(t, ScoreBatch([]*core.Chunk{nil}))
}
