package kb

import (
	"context"
	"testing"
	"time"

	"github.com/clientpulse/kb/ai/mock"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKB(t *testing.T, opts ...Option) *KnowledgeBase {
	opts = append([]Option{WithInMemory(), WithProvider(mock.NewMockProvider())}, opts...)
	k, err := Open("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { k.Close() })
	return k
}

func TestOpenAndClose(t *testing.T) {
	k, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, k)

	assert.NotNil(t, k.DocumentRepository())
	assert.NotNil(t, k.ChunkRepository())
	assert.NotNil(t, k.EmbeddingRepository())
	assert.Equal(t, mock.EmbeddingModelName, k.EmbeddingModel())

	require.NoError(t, k.Close())
}

func TestOpen_InvalidChunking(t *testing.T) {
	_, err := Open("", WithInMemory(), WithProvider(mock.NewMockProvider()), WithChunking(0, 0))
	assert.Error(t, err)
}

func TestKnowledgeBase_IngestAndSearch(t *testing.T) {
	k := openTestKB(t)
	ctx := context.Background()

	doc := &core.Document{
		Source:   core.SourceFathom,
		SourceId: "call-1",
		Title:    "Kickoff",
		Project:  "acme",
	}
	segments := []core.Segment{
		{Speaker: "alice", Text: "We may go over budget soon on this project."},
		{Speaker: "bob", Text: "The design review went smoothly."},
	}

	chunks, err := k.Ingest(ctx, doc, segments)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Lexical path is available as soon as ingestion returns
	results, err := k.Search(ctx, search.Request{Query: "budget", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, doc.Id, results[0].DocumentId)
	assert.Equal(t, 1, results[0].Rank)
	assert.Contains(t, results[0].Text, "budget")
}

func TestKnowledgeBase_SearchRespectsViewer(t *testing.T) {
	k := openTestKB(t)
	ctx := context.Background()

	doc := &core.Document{
		Source:         core.SourceSlack,
		SourceId:       "C123",
		AllowedViewers: []string{"alice@example.com"},
	}
	_, err := k.Ingest(ctx, doc, []core.Segment{{Text: "budget discussion thread"}})
	require.NoError(t, err)

	visible, err := k.Search(ctx, search.Request{Query: "budget", Limit: 5, Viewer: "Alice@Example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, visible)

	hidden, err := k.Search(ctx, search.Request{Query: "budget", Limit: 5, Viewer: "mallory@example.com"})
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestKnowledgeBase_Scan(t *testing.T) {
	k := openTestKB(t)
	ctx := context.Background()

	doc := &core.Document{
		Source:   core.SourceFathom,
		SourceId: "call-2",
	}
	segments := []core.Segment{
		{Text: "We are over budget and there is a cost overrun."},
		{Text: "They asked about a new project and a support retainer."},
	}
	_, err := k.Ingest(ctx, doc, segments)
	require.NoError(t, err)

	alerts, err := k.Scan(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, alerts)

	rules := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		rules = append(rules, alert.Rule)
		assert.Positive(t, alert.Score)
		assert.NotNil(t, alert.Chunk)
	}
	assert.Contains(t, rules, "budget_risk")
	assert.Contains(t, rules, "opportunity")
}

func TestKnowledgeBase_Scan_UnknownDocument(t *testing.T) {
	k := openTestKB(t)

	alerts, err := k.Scan(context.Background(), "fathom:nope")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestKnowledgeBase_NewReembedder(t *testing.T) {
	k := openTestKB(t)
	ctx := context.Background()

	doc := &core.Document{Source: core.SourceDrive, SourceId: "doc-1"}
	_, err := k.Ingest(ctx, doc, []core.Segment{{Text: "quarterly planning notes"}})
	require.NoError(t, err)

	// Wait for the async embedding job so the sweep sees a settled index
	time.Sleep(200 * time.Millisecond)

	r, err := k.NewReembedder("fresh-model", nil, testWriter{})
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	chunks, err := k.ChunkRepository().GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	_, err = k.EmbeddingRepository().GetEmbedding(ctx, chunks[0].Id, "fresh-model")
	assert.NoError(t, err)
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }
