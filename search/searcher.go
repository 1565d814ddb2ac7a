package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
)

// Request describes one search call.
type Request struct {
	// Query is the free-text query. An empty query yields no lexical tokens
	// but the vector path is still attempted.
	Query string

	// Limit caps the number of results. Must be >= 1.
	Limit int

	// Filters optionally narrows the candidate set. Nil means no filtering.
	Filters *Filters

	// Viewer is the identity results are filtered against. Empty means an
	// internal caller that sees everything.
	Viewer string

	// Rerank is accepted for API compatibility and currently ignored;
	// no learned reranker is wired in.
	Rerank bool
}

// Filters narrows candidates before scoring. A chunk survives when it matches
// at least one entry of every non-empty list.
type Filters struct {
	Sources  []core.SourceKind
	Projects []string
}

// Searcher provides hybrid lexical and vector search over indexed chunks.
type Searcher struct {
	chunkRepository     storage.ChunkRepository
	documentRepository  storage.DocumentRepository
	embeddingRepository storage.EmbeddingRepository
	embedder            ai.Embedder
	embeddingModel      string
	logger              *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chunkRepository storage.ChunkRepository,
	documentRepository storage.DocumentRepository,
	embeddingRepository storage.EmbeddingRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		chunkRepository:     chunkRepository,
		documentRepository:  documentRepository,
		embeddingRepository: embeddingRepository,
		embedder:            provider.Embedder(),
		embeddingModel:      provider.EmbeddingModel(),
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a hybrid search and returns ranked results.
func (s *Searcher) Search(ctx context.Context, req Request) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs a hybrid search with monitoring.
// The monitor receives callbacks at each stage of the search process.
//
// Scoring: the lexical score of a chunk is the summed occurrence count of the
// lowercased query tokens in its text; the vector score is the dot product of
// the normalized query embedding with the chunk's stored vector for the
// current model, when positive. The fused score is their plain sum. Chunks
// contributing to neither path are excluded. When the embedding provider is
// unavailable the vector path is skipped and a lexical-only ranking of the
// same shape is returned.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if req.Limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", ErrInvalidRequest, req.Limit)
	}

	monitor.Start(req.Query)

	candidates, documents, err := s.selectCandidates(ctx, req)
	if err != nil {
		return nil, err
	}
	ids := make([]core.ID, 0, len(candidates))
	for _, chunk := range candidates {
		ids = append(ids, chunk.Id)
	}
	monitor.AfterCandidateSelection(ids)

	tokens := tokenize(req.Query)
	lexical := make(map[core.ID]float32)
	for _, chunk := range candidates {
		if score := lexicalScore(chunk.Text, tokens); score > 0 {
			lexical[chunk.Id] = score
		}
	}
	monitor.AfterLexicalScoring(lexical)

	var vector map[core.ID]float32
	queryVector, err := s.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		// Degraded lexical-only ranking, same response shape.
		s.logger.Warn("vector scoring skipped", "err", err)
		monitor.VectorScoringSkipped(err)
	} else {
		vector, err = s.vectorScores(ctx, queryVector, candidates)
		if err != nil {
			return nil, err
		}
		monitor.AfterVectorScoring(vector)
	}

	// Fuse in candidate (first-seen) order so the stable sort gives a
	// deterministic tie-break.
	results := make([]*core.SearchResult, 0, len(lexical)+len(vector))
	for _, chunk := range candidates {
		lex, inLexical := lexical[chunk.Id]
		vec, inVector := vector[chunk.Id]
		if !inLexical && !inVector {
			continue
		}

		document := documents[chunk.DocumentId]
		results = append(results, &core.SearchResult{
			ChunkId:     chunk.Id,
			DocumentId:  chunk.DocumentId,
			Score:       lex + vec,
			Text:        chunk.Text,
			Speaker:     chunk.Speaker,
			StartMS:     chunk.StartMS,
			EndMS:       chunk.EndMS,
			Project:     document.Project,
			WorkspaceId: document.WorkspaceId,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	// Dense 1-based ranks: equal scores share a rank and the next distinct
	// score takes rank+1, so ties are never numbered by position.
	for i, result := range results {
		if i == 0 {
			result.Rank = 1
			continue
		}
		result.Rank = results[i-1].Rank
		if result.Score < results[i-1].Score {
			result.Rank++
		}
	}

	monitor.Finish(results)
	return results, nil
}

// selectCandidates enumerates chunks in index order and applies visibility
// and request filters. Returns the surviving chunks plus their documents.
func (s *Searcher) selectCandidates(ctx context.Context, req Request) ([]*core.Chunk, map[core.ID]*core.Document, error) {
	documents := make(map[core.ID]*core.Document)
	var candidates []*core.Chunk

	err := s.chunkRepository.IterateChunks(ctx, func(chunk *core.Chunk) error {
		document, ok := documents[chunk.DocumentId]
		if !ok {
			var err error
			document, err = s.documentRepository.GetDocument(ctx, chunk.DocumentId)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					// Orphaned chunk; nothing to authorize against.
					s.logger.Warn("chunk has no document", "chunkID", chunk.Id)
					return nil
				}
				return err
			}
			documents[chunk.DocumentId] = document
		}
		if document == nil {
			return nil
		}

		if !document.VisibleTo(req.Viewer) {
			return nil
		}
		if !matchesFilters(document, req.Filters) {
			return nil
		}

		candidates = append(candidates, chunk)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return candidates, documents, nil
}

// vectorScores scores candidates with a stored vector for the current
// embedding model. Only positive dot products contribute.
func (s *Searcher) vectorScores(ctx context.Context, queryVector []float32, candidates []*core.Chunk) (map[core.ID]float32, error) {
	if len(queryVector) == 0 {
		return map[core.ID]float32{}, nil
	}
	queryVector = core.NormalizeVector(queryVector)

	scores := make(map[core.ID]float32)
	for _, chunk := range candidates {
		embedding, err := s.embeddingRepository.GetEmbedding(ctx, chunk.Id, s.embeddingModel)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if score := core.Dot(queryVector, embedding.Vector); score > 0 {
			scores[chunk.Id] = score
		}
	}
	return scores, nil
}

// matchesFilters reports whether the document matches at least one entry of
// every non-empty filter list.
func matchesFilters(document *core.Document, filters *Filters) bool {
	if filters == nil {
		return true
	}
	if len(filters.Sources) > 0 {
		matched := false
		for _, source := range filters.Sources {
			if document.Source == source {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(filters.Projects) > 0 {
		matched := false
		for _, project := range filters.Projects {
			if document.Project == project {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
