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

	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
)

const (
	// DefaultBatchSize is the default number of chunks to collect per batch
	DefaultBatchSize = 100
)

// ChunkIterator walks every chunk in the index in batches.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks to collect per batch (must be > 0)
func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach streams all chunks in key order, calling fn once per batch.
// Iteration stops on the first error from fn, which is propagated.
// Context cancellation is honored by the underlying chunk stream.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	batch := make([]*core.Chunk, 0, it.batchSize)

	err := it.repo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		batch = append(batch, chunk)
		if len(batch) < it.batchSize {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = make([]*core.Chunk, 0, it.batchSize)
		return nil
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// Count returns the total number of chunks in the index.
func (it *ChunkIterator) Count(ctx context.Context) (int, error) {
	total := 0
	err := it.repo.IterateChunks(ctx, func(*core.Chunk) error {
		total++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
