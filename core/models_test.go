package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentDigest(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		d1 := ContentDigest("we may go over budget soon")
		d2 := ContentDigest("we may go over budget soon")
		assert.Equal(t, d1, d2)
	})

	t.Run("different content different digest", func(t *testing.T) {
		d1 := ContentDigest("alpha")
		d2 := ContentDigest("beta")
		assert.NotEqual(t, d1, d2)
	})

	t.Run("digest is 16 hex chars", func(t *testing.T) {
		assert.Len(t, ContentDigest("anything"), 16)
	})
}

func TestChunkIDFor(t *testing.T) {
	docID := DocumentIDFor(SourceFathom, "call-123")

	t.Run("idempotent", func(t *testing.T) {
		id1 := ChunkIDFor(docID, 0, "hello world")
		id2 := ChunkIDFor(docID, 0, "hello world")
		assert.Equal(t, id1, id2)
	})

	t.Run("sequence distinguishes identical text", func(t *testing.T) {
		id1 := ChunkIDFor(docID, 0, "hello world")
		id2 := ChunkIDFor(docID, 1, "hello world")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("content distinguishes identical position", func(t *testing.T) {
		id1 := ChunkIDFor(docID, 0, "hello world")
		id2 := ChunkIDFor(docID, 0, "goodbye world")
		assert.NotEqual(t, id1, id2)
	})
}

func TestSourceKindRoundTrip(t *testing.T) {
	kinds := []SourceKind{SourceSlack, SourceFathom, SourceDrive, SourceTeamwork, SourceGitHub, SourceHarvest}
	for _, kind := range kinds {
		parsed, err := ParseSourceKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseSourceKind("usenet")
		assert.ErrorIs(t, err, ErrInvalidSourceKind)
	})
}

func TestDocumentVisibleTo(t *testing.T) {
	t.Run("no allow-list is visible to anyone", func(t *testing.T) {
		doc := &Document{Id: "fathom:1", Source: SourceFathom}
		assert.True(t, doc.VisibleTo("anyone@x.com"))
	})

	t.Run("allow-list blocks non-members", func(t *testing.T) {
		doc := &Document{Id: "fathom:1", Source: SourceFathom, AllowedViewers: []string{"a@x.com"}}
		assert.False(t, doc.VisibleTo("b@x.com"))
	})

	t.Run("allow-list match is case-insensitive", func(t *testing.T) {
		doc := &Document{Id: "fathom:1", Source: SourceFathom, AllowedViewers: []string{"a@x.com"}}
		assert.True(t, doc.VisibleTo("A@X.com"))
	})

	t.Run("empty viewer bypasses filtering", func(t *testing.T) {
		doc := &Document{Id: "fathom:1", Source: SourceFathom, AllowedViewers: []string{"a@x.com"}}
		assert.True(t, doc.VisibleTo(""))
	})
}

func TestSignalTypeSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, SignalRiskBudget.Severity())

	// Every non-budget type is medium; low is reserved and unused.
	for _, signal := range SignalTypes {
		if signal == SignalRiskBudget {
			continue
		}
		assert.Equal(t, SeverityMedium, signal.Severity(), signal.String())
	}
}

func TestSignalTypeCodes(t *testing.T) {
	assert.Equal(t, "risk_budget", SignalRiskBudget.String())
	assert.Equal(t, "RISK_BUDGET", SignalRiskBudget.Code())
	assert.Equal(t, "OPPORTUNITY_ADDITIONAL_WORK", SignalOpportunityAdditionalWork.Code())
}

func TestSegmentBlank(t *testing.T) {
	assert.True(t, Segment{Text: "   \t\n"}.Blank())
	assert.False(t, Segment{Text: "hi"}.Blank())
}
