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
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// Parallelism is the number of batches embedded concurrently
	Parallelism int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		Parallelism:    4,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates the reembedding of every stored chunk.
type Reembedder struct {
	repo      storage.ChunkRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ChunkIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}

	return &Reembedder{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewChunkIterator(repo, config.BatchSize),
	}
}

// Run executes the reembedding operation.
// Every chunk in the database is reembedded with the configured embedder,
// up to Parallelism batches at a time. The first failing batch stops the run;
// batches already written keep their new vectors.
func (r *Reembedder) Run(ctx context.Context) error {
	totalChunks, err := r.repo.CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if totalChunks == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (batch size: %d, parallelism: %d)\n",
		totalChunks, r.config.BatchSize, r.config.Parallelism)

	// Initialize progress tracker
	tracker := NewProgressTracker(r.progress, totalChunks, r.config.ReportInterval)
	tracker.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Parallelism)

	err = r.iterator.ForEach(gctx, func(chunks []*core.Chunk) error {
		g.Go(func() error {
			if err := r.processor.Process(gctx, chunks); err != nil {
				return fmt.Errorf("failed to process batch: %w", err)
			}
			tracker.BatchDone(len(chunks))
			return nil
		})
		return nil
	})
	if waitErr := g.Wait(); waitErr != nil {
		return waitErr
	}
	if err != nil {
		return err
	}

	// Finish progress tracking
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		totalChunks, elapsed.Round(time.Second), float64(totalChunks)/elapsed.Seconds())

	return nil
}
