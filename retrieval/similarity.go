package retrieval

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/docqa/core"
)

// SimilarityRetriever ranks chunks by cosine similarity to a query embedding.
type SimilarityRetriever struct {
	topK int
}

// NewSimilarityRetriever creates a similarity retriever.
func NewSimilarityRetriever(opts ...Option) *SimilarityRetriever {
	o := newOptions(opts)
	return &SimilarityRetriever{topK: o.topK}
}

type scored struct {
	chunk *core.Chunk
	score float64
}

// Retrieve returns the topK chunks most similar to query, best first. Ties
// are broken by chunk index. Chunks that have not been embedded yet are
// skipped. Scores are rounded to two decimals after ranking.
func (r *SimilarityRetriever) Retrieve(query core.Embedding, chunks []*core.Chunk) ([]core.RetrievedPassage, error) {
	candidates := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		if c == nil || len(c.Embedding) == 0 {
			continue
		}
		if len(c.Embedding) != len(query) {
			return nil, fmt.Errorf("%w: query has %d dimensions, chunk %d has %d",
				ErrDimensionMismatch, len(query), c.Index, len(c.Embedding))
		}
		candidates = append(candidates, scored{chunk: c, score: CosineSimilarity(query, c.Embedding)})
	}

	sortScored(candidates)
	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}

	passages := make([]core.RetrievedPassage, len(candidates))
	for i, s := range candidates {
		passages[i] = passage(s, 2)
	}
	return passages, nil
}

// CosineSimilarity returns dot(a,b) / (|a||b|) computed in float64. A zero
// norm on either side gives 0. The vectors must have equal length.
func CosineSimilarity(a, b core.Embedding) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sortScored orders by descending score, then ascending chunk index.
func sortScored(s []scored) {
	slices.SortStableFunc(s, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.chunk.Index, b.chunk.Index)
	})
}

func passage(s scored, decimals int) core.RetrievedPassage {
	return core.RetrievedPassage{
		ChunkId: s.chunk.Id,
		Index:   s.chunk.Index,
		Text:    s.chunk.Text,
		Score:   round(s.score, decimals),
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
