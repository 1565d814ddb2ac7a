package ingestion

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/chunk"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/signals"
	"github.com/clientpulse/kb/storage"
	"github.com/panjf2000/ants/v2"
)

// Pipeline orchestrates the ingestion and processing of documents.
// It manages concurrent processing of embeddings and signal detection.
type Pipeline struct {
	documentRepository  storage.DocumentRepository
	chunkRepository     storage.ChunkRepository
	embeddingRepository storage.EmbeddingRepository
	chunker             *chunk.Chunker
	detector            *signals.Detector
	sink                AlertSink
	embeddingPool       *ants.Pool
	detectionPool       *ants.Pool
	embeddingProc       processor
	detectionProc       processor
	logger              *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		if p.detectionPool != nil {
			p.detectionPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		detectionPool, err := ants.NewPool(size)
		if err != nil {
			embeddingPool.Release()
			return err
		}

		p.embeddingPool = embeddingPool
		p.detectionPool = detectionPool
		return nil
	}
}

// WithChunker sets the chunker used to window segments.
// Default is chunk.Default().
func WithChunker(chunker *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		if chunker != nil {
			p.chunker = chunker
		}
		return nil
	}
}

// WithDetector sets the signal detector run over ingested chunks.
// Default is a keyword-only detector.
func WithDetector(detector *signals.Detector) Option {
	return func(p *Pipeline) error {
		if detector != nil {
			p.detector = detector
		}
		return nil
	}
}

// WithAlertSink sets the destination for detected alerts.
// Default is a sink that logs each alert.
func WithAlertSink(sink AlertSink) Option {
	return func(p *Pipeline) error {
		if sink != nil {
			p.sink = sink
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	embeddingRepository storage.EmbeddingRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	detectionPool, err := ants.NewPool(poolSize)
	if err != nil {
		embeddingPool.Release()
		return nil, err
	}

	p := &Pipeline{
		documentRepository:  documentRepository,
		chunkRepository:     chunkRepository,
		embeddingRepository: embeddingRepository,
		chunker:             chunk.Default(),
		detector:            signals.NewDetector(),
		embeddingPool:       embeddingPool,
		detectionPool:       detectionPool,
		logger:              slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.sink == nil {
		p.sink = NewLogSink(p.logger)
	}

	// Create processors after options are applied (so they get final config)
	embeddingProc, err := newEmbeddingProcessor(chunkRepository, embeddingRepository,
		provider.Embedder(), provider.EmbeddingModel(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	detectionProc, err := newDetectionProcessor(chunkRepository, p.detector, p.sink, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.embeddingProc = embeddingProc
	p.detectionProc = detectionProc

	return p, nil
}

// IngestDocument windows the segments into chunks, writes the document and
// its chunks synchronously, and schedules embedding and signal detection
// asynchronously. Returns the chunks as written.
//
// IDs are content-derived, so ingesting identical input twice overwrites in
// place. Errors during async processing are logged but do not fail the
// ingestion; chunks whose embedding job failed remain searchable lexically.
func (p *Pipeline) IngestDocument(ctx context.Context, doc *core.Document, segments []core.Segment) ([]*core.Chunk, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	if doc.Id == "" {
		doc.Id = core.DocumentIDFor(doc.Source, doc.SourceId)
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	if _, err := p.documentRepository.UpsertDocuments(ctx, doc); err != nil {
		return nil, err
	}

	chunks := p.chunker.Split(doc.Id, segments)
	if len(chunks) == 0 {
		p.logger.Debug("document produced no chunks", "documentID", doc.Id)
		return nil, nil
	}

	written, err := p.chunkRepository.UpsertChunks(ctx, chunks...)
	if err != nil {
		return nil, err
	}

	ids := make([]core.ID, len(written))
	for i, c := range written {
		ids[i] = c.Id
	}

	// Submit for async processing
	p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "documentID", doc.Id, "err", err)
		}
	})

	p.detectionPool.Submit(func() {
		if err := p.detectionProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing signals", "documentID", doc.Id, "err", err)
		}
	})

	return written, nil
}

// Release releases resources including worker pools. Pending jobs are
// allowed to finish. The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
	if p.detectionPool != nil {
		p.detectionPool.Release()
	}
}
