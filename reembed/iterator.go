// Copyright 2025 Poiesic Systems
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

	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

const (
	// DefaultBatchSize is the default number of chunks in each batch
	DefaultBatchSize = 100
)

// ChunkIterator iterates over all stored chunks in batches.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks in each batch (must be > 0)
func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all chunks, calling fn for each batch.
// Chunks are read up front so that fn may write to the repository.
// Iteration stops on first error from fn or when all chunks are processed.
// Context cancellation is checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var chunks []*core.Chunk
	err := it.repo.ForEachChunk(ctx, func(c *core.Chunk) error {
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		return err
	}

	for i := 0; i < len(chunks); i += it.batchSize {
		end := min(i+it.batchSize, len(chunks))

		// Call user function with batch
		if err := fn(chunks[i:end]); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
