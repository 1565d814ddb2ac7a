package storage

import (
	"testing"
	"time"

	"github.com/clientpulse/kb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTime() time.Time {
	// Micro precision, matching the wire format.
	return time.Date(2025, 6, 3, 14, 30, 0, 123456000, time.UTC)
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := &core.Chunk{
		Id:            "fathom:call-1:0:abc123",
		DocumentId:    "fathom:call-1",
		Seq:           0,
		Speaker:       "alice",
		StartMS:       0,
		EndMS:         5000,
		Text:          "we might go over budget this quarter",
		TokenEstimate: 7,
		InsertedAt:    testTime(),
		UpdatedAt:     testTime(),
	}

	data := MarshalChunk(chunk)
	got, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := &core.Document{
		Id:             "slack:C42:1717000000",
		Source:         core.SourceSlack,
		SourceId:       "C42:1717000000",
		Title:          "project check-in",
		Project:        "acme-rollout",
		WorkspaceId:    "ws-1",
		AllowedViewers: []string{"a@x.com", "b@x.com"},
		InsertedAt:     testTime(),
		UpdatedAt:      testTime(),
	}

	data := MarshalDocument(doc)
	got, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	t.Run("empty viewer list survives", func(t *testing.T) {
		doc.AllowedViewers = nil
		got, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)
		assert.Empty(t, got.AllowedViewers)
	})
}

func TestEmbeddingRoundTrip(t *testing.T) {
	emb := &core.EmbeddingVector{
		ChunkId:    "fathom:call-1:0:abc123",
		Model:      "embeddinggemma",
		Vector:     []float32{0.25, -0.5, 0.75},
		InsertedAt: testTime(),
	}

	data := MarshalEmbedding(emb)
	got, err := UnmarshalEmbedding(data)
	require.NoError(t, err)
	assert.Equal(t, emb, got)
}

func TestUnmarshalTruncated(t *testing.T) {
	chunk := &core.Chunk{Id: "a", DocumentId: "b", Text: "hello", TokenEstimate: 1,
		InsertedAt: testTime(), UpdatedAt: testTime()}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)
}
