package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

// Retriever loads the visible chunks of a document and ranks them with the
// requested strategy.
type Retriever struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	similarity      *SimilarityRetriever
	rerank          *RerankRetriever
	logger          *slog.Logger
}

// NewRetriever creates a retriever using the embedder and reranker of provider.
func NewRetriever(chunkRepository storage.ChunkRepository, provider ai.AIProvider, opts ...Option) (*Retriever, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	rerank, err := NewRerankRetriever(provider.Reranker(), opts...)
	if err != nil {
		return nil, err
	}

	o := newOptions(opts)
	return &Retriever{
		chunkRepository: chunkRepository,
		embedder:        provider.Embedder(),
		similarity:      NewSimilarityRetriever(opts...),
		rerank:          rerank,
		logger:          o.logger.With("component", "retrieval"),
	}, nil
}

// Retrieve returns the passages of a document most relevant to question.
// Only chunks already stored are considered, so a document still being
// ingested is searched as far as it has been processed.
func (r *Retriever) Retrieve(ctx context.Context, documentID core.ID, question string, strategy core.Strategy) ([]core.RetrievedPassage, error) {
	return r.RetrieveWithMonitor(ctx, documentID, question, strategy, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each stage.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, documentID core.ID, question string,
	strategy core.Strategy, monitor Monitor) ([]core.RetrievedPassage, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: unknown retrieval strategy %q", core.ErrValidation, strategy)
	}
	monitor.Start(documentID, question, strategy)

	chunks, err := r.chunkRepository.GetChunksByDocument(ctx, documentID)
	if err != nil {
		r.logger.Error("error loading chunks", "document", documentID, "err", err)
		return nil, err
	}
	monitor.AfterChunkLoad(chunks)

	if len(chunks) == 0 {
		monitor.Finish(nil)
		return []core.RetrievedPassage{}, nil
	}

	var passages []core.RetrievedPassage
	switch strategy {
	case core.StrategySimilarity:
		vector, err := r.embedder.EmbedText(ctx, question)
		if err != nil {
			r.logger.Error("error generating embedding for question", "err", err)
			return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
		}
		monitor.AfterQueryEmbedding(vector)
		passages, err = r.similarity.Retrieve(vector, chunks)
		if err != nil {
			return nil, err
		}
	case core.StrategyRerank:
		passages, err = r.rerank.Retrieve(ctx, question, chunks)
		if err != nil {
			return nil, err
		}
	}

	r.logger.Debug("retrieved passages", "document", documentID, "strategy", strategy,
		"candidates", len(chunks), "passages", len(passages))
	monitor.Finish(passages)
	return passages, nil
}
