package mock

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/poiesic/docqa/ai"
)

// MockReranker is a test double for ai.Reranker.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, documents are scored by the share of query words they contain.
	RerankFunc func(ctx context.Context, query string, documents []string, topN int) ([]ai.RerankResult, error)

	callCount atomic.Int64
}

// NewMockReranker creates a mock reranker with default word-overlap scoring.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// WithRerankFunc sets RerankFunc and returns the mock for chaining.
func (m *MockReranker) WithRerankFunc(fn func(ctx context.Context, query string, documents []string, topN int) ([]ai.RerankResult, error)) *MockReranker {
	m.RerankFunc = fn
	return m
}

// Rerank scores documents against query.
func (m *MockReranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]ai.RerankResult, error) {
	m.callCount.Add(1)

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, documents, topN)
	}

	words := strings.Fields(strings.ToLower(query))
	results := make([]ai.RerankResult, len(documents))
	for i, doc := range documents {
		lower := strings.ToLower(doc)
		hits := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		score := 0.0
		if len(words) > 0 {
			score = float64(hits) / float64(len(words))
		}
		results[i] = ai.RerankResult{Index: i, Score: score}
	}
	slices.SortStableFunc(results, func(a, b ai.RerankResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount.Store(0)
	m.RerankFunc = nil
}
