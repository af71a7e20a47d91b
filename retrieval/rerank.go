package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/core"
)

// RerankRetriever ranks chunks with an external cross-encoder.
type RerankRetriever struct {
	reranker ai.Reranker
	topK     int
	logger   *slog.Logger
}

// NewRerankRetriever creates a rerank retriever backed by reranker.
func NewRerankRetriever(reranker ai.Reranker, opts ...Option) (*RerankRetriever, error) {
	if reranker == nil {
		return nil, ErrRerankerRequired
	}
	o := newOptions(opts)
	return &RerankRetriever{
		reranker: reranker,
		topK:     o.topK,
		logger:   o.logger.With("component", "reranker"),
	}, nil
}

// Retrieve asks the reranker to score the chunk texts against query and
// returns its topK results mapped back to chunks, best first. Scores are
// rounded to four decimals. Any failure of the service, or a result naming
// a position outside the batch, is reported as core.ErrRerank.
func (r *RerankRetriever) Retrieve(ctx context.Context, query string, chunks []*core.Chunk) ([]core.RetrievedPassage, error) {
	batch := make([]*core.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c != nil {
			batch = append(batch, c)
		}
	}
	if len(batch) == 0 {
		return []core.RetrievedPassage{}, nil
	}

	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	results, err := r.reranker.Rerank(ctx, query, texts, r.topK)
	if err != nil {
		r.logger.Error("rerank request failed", "chunks", len(batch), "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrRerank, err)
	}

	seen := make(map[int]bool, len(results))
	ranked := make([]scored, 0, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(batch) {
			return nil, fmt.Errorf("%w: result index %d outside batch of %d", core.ErrRerank, res.Index, len(batch))
		}
		if seen[res.Index] {
			return nil, fmt.Errorf("%w: result index %d returned twice", core.ErrRerank, res.Index)
		}
		seen[res.Index] = true
		ranked = append(ranked, scored{chunk: batch[res.Index], score: res.Score})
	}

	sortScored(ranked)
	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}

	passages := make([]core.RetrievedPassage, len(ranked))
	for i, s := range ranked {
		passages[i] = passage(s, 4)
	}
	return passages, nil
}
