// Copyright 2025 ClientPulse Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kb

import (
	"context"
	"io"
	"log/slog"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/ai/openai"
	"github.com/clientpulse/kb/chunk"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/ingestion"
	"github.com/clientpulse/kb/reembed"
	"github.com/clientpulse/kb/search"
	"github.com/clientpulse/kb/signals"
	"github.com/clientpulse/kb/storage"
	"github.com/clientpulse/kb/storage/badger"
)

// KnowledgeBase ties the index, AI provider, ingestion pipeline, signal
// detector, and searcher together behind one handle.
type KnowledgeBase struct {
	backend       *badger.Backend
	documentRepo  storage.DocumentRepository
	chunkRepo     storage.ChunkRepository
	embeddingRepo storage.EmbeddingRepository
	provider      ai.AIProvider
	pipeline      *ingestion.Pipeline
	searcher      *search.Searcher
	logger        *slog.Logger
}

// Option configures a KnowledgeBase.
type Option func(*kbOptions)

type kbOptions struct {
	aiConfig          *ai.Config
	provider          ai.AIProvider
	inMemory          bool
	targetChars       int
	overlapChars      int
	classifierEnabled bool
	sink              ingestion.AlertSink
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) Option {
	return func(o *kbOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects an AI provider directly, bypassing the default
// OpenAI-compatible provider. Useful for tests and custom backends.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *kbOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps the index in memory instead of on disk.
func WithInMemory() Option {
	return func(o *kbOptions) {
		o.inMemory = true
	}
}

// WithChunking sets the chunk windowing budgets.
func WithChunking(targetChars, overlapChars int) Option {
	return func(o *kbOptions) {
		o.targetChars = targetChars
		o.overlapChars = overlapChars
	}
}

// WithClassifierEnabled toggles the LLM classifier and summarizer on the
// signal detector. Disabled by default; keyword rules always run.
func WithClassifierEnabled(enabled bool) Option {
	return func(o *kbOptions) {
		o.classifierEnabled = enabled
	}
}

// WithAlertSink sets the destination for alerts detected during ingestion.
// Default logs each alert.
func WithAlertSink(sink ingestion.AlertSink) Option {
	return func(o *kbOptions) {
		o.sink = sink
	}
}

// Open opens (or creates) a knowledge base at filePath and wires up the
// index, AI provider, ingestion pipeline, and searcher.
func Open(filePath string, opts ...Option) (*KnowledgeBase, error) {
	options := &kbOptions{
		aiConfig:     ai.DefaultConfig(),
		targetChars:  chunk.DefaultTargetChars,
		overlapChars: chunk.DefaultOverlapChars,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documentRepo := badger.NewDocumentRepository(backend)
	chunkRepo := badger.NewChunkRepository(backend)
	embeddingRepo := badger.NewEmbeddingRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	chunker, err := chunk.New(options.targetChars, options.overlapChars)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	var detectorOpts []signals.Option
	if options.classifierEnabled {
		detectorOpts = append(detectorOpts,
			signals.WithClassifier(provider.Classifier()),
			signals.WithSummarizer(provider.Summarizer()),
		)
	}
	detector := signals.NewDetector(detectorOpts...)

	pipelineOpts := []ingestion.Option{
		ingestion.WithChunker(chunker),
		ingestion.WithDetector(detector),
	}
	if options.sink != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithAlertSink(options.sink))
	}

	pipeline, err := ingestion.NewPipeline(documentRepo, chunkRepo, embeddingRepo, provider, pipelineOpts...)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(chunkRepo, documentRepo, embeddingRepo, provider)
	if err != nil {
		pipeline.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &KnowledgeBase{
		backend:       backend,
		documentRepo:  documentRepo,
		chunkRepo:     chunkRepo,
		embeddingRepo: embeddingRepo,
		provider:      provider,
		pipeline:      pipeline,
		searcher:      searcher,
		logger:        slog.Default(),
	}, nil
}

// Ingest indexes a document's segments and schedules embedding and signal
// detection. Returns the chunks as written.
func (k *KnowledgeBase) Ingest(ctx context.Context, doc *core.Document, segments []core.Segment) ([]*core.Chunk, error) {
	return k.pipeline.IngestDocument(ctx, doc, segments)
}

// Search runs a hybrid lexical and vector search over the index.
func (k *KnowledgeBase) Search(ctx context.Context, req search.Request) ([]*core.SearchResult, error) {
	return k.searcher.Search(ctx, req)
}

// Scan runs batch keyword scoring over all chunks of one document and
// returns the best-scoring chunk per rule.
func (k *KnowledgeBase) Scan(ctx context.Context, documentID core.ID) ([]*signals.BatchAlert, error) {
	chunks, err := k.chunkRepo.GetChunksByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return signals.ScoreBatch(chunks), nil
}

// NewReembedder creates a reembedding sweep over the whole index using the
// provider's embedder. An empty model targets the provider's current model.
func (k *KnowledgeBase) NewReembedder(model string, config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if model == "" {
		model = k.provider.EmbeddingModel()
	}
	return reembed.NewReembedder(k.chunkRepo, k.embeddingRepo, k.provider.Embedder(), model, config, progress)
}

// DocumentRepository exposes the underlying document repository.
func (k *KnowledgeBase) DocumentRepository() storage.DocumentRepository {
	return k.documentRepo
}

// ChunkRepository exposes the underlying chunk repository.
func (k *KnowledgeBase) ChunkRepository() storage.ChunkRepository {
	return k.chunkRepo
}

// EmbeddingRepository exposes the underlying embedding repository.
func (k *KnowledgeBase) EmbeddingRepository() storage.EmbeddingRepository {
	return k.embeddingRepo
}

// EmbeddingModel returns the identifier of the model the provider embeds with.
func (k *KnowledgeBase) EmbeddingModel() string {
	return k.provider.EmbeddingModel()
}

// Close releases the pipeline's worker pools, the AI provider, and the
// storage backend. The knowledge base should not be used after Close.
func (k *KnowledgeBase) Close() error {
	k.pipeline.Release()

	if err := k.provider.Close(); err != nil {
		k.logger.Error("error closing AI provider", "err", err)
	}

	if err := k.backend.Close(); err != nil {
		k.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
