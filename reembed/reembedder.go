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

package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
)

// Config holds configuration for the reembedding sweep.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// All re-embeds every chunk, including those that already carry a
	// vector for the target model. Default is to embed only chunks with
	// no stored vector for the model.
	All bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder sweeps the whole index and embeds chunks under a target model.
type Reembedder struct {
	chunkRepo     storage.ChunkRepository
	embeddingRepo storage.EmbeddingRepository
	embedder      ai.Embedder
	model         string
	config        *Config
	progress      io.Writer
	processor     *BatchProcessor
	iterator      *ChunkIterator
}

// NewReembedder creates a new reembedder for the given target model.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	chunkRepo storage.ChunkRepository,
	embeddingRepo storage.EmbeddingRepository,
	embedder ai.Embedder,
	model string,
	config *Config,
	progress io.Writer,
) (*Reembedder, error) {
	if model == "" {
		return nil, ErrEmptyModel
	}
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(embeddingRepo, embedder, model, config.MaxRetries, config.RetryDelay)
	iterator := NewChunkIterator(chunkRepo, config.BatchSize)

	return &Reembedder{
		chunkRepo:     chunkRepo,
		embeddingRepo: embeddingRepo,
		embedder:      embedder,
		model:         model,
		config:        config,
		progress:      progress,
		processor:     processor,
		iterator:      iterator,
	}, nil
}

// Run executes the reembedding sweep.
// Chunks missing a vector for the target model are embedded; with Config.All
// every chunk is embedded regardless. Progress is reported to the configured
// writer. Partial progress survives an aborted run, since each batch's
// vectors are committed as it completes.
func (r *Reembedder) Run(ctx context.Context) error {
	totalChunks, err := r.iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	if totalChunks == 0 {
		fmt.Fprintf(r.progress, "No chunks found in index (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks for model %q (batch size: %d)\n",
		totalChunks, r.model, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalChunks, r.config.ReportInterval)
	tracker.Start()

	scanned := 0
	embedded := 0

	err = r.iterator.ForEach(ctx, func(chunks []*core.Chunk) error {
		selected, err := r.selectChunks(ctx, chunks)
		if err != nil {
			return err
		}

		if err := r.processor.Process(ctx, selected); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		scanned += len(chunks)
		embedded += len(selected)
		tracker.Update(scanned)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Embedded %d of %d chunks in %v (%.1f chunks/sec)\n",
		embedded, totalChunks, elapsed.Round(time.Second), float64(totalChunks)/elapsed.Seconds())

	return nil
}

// selectChunks filters the batch down to chunks that need embedding.
func (r *Reembedder) selectChunks(ctx context.Context, chunks []*core.Chunk) ([]*core.Chunk, error) {
	if r.config.All {
		return chunks, nil
	}

	selected := make([]*core.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		_, err := r.embeddingRepo.GetEmbedding(ctx, chunk.Id, r.model)
		if errors.Is(err, storage.ErrNotFound) {
			selected = append(selected, chunk)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check embedding: %w", err)
		}
	}
	return selected, nil
}
