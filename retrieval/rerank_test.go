package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/ai/mock"
	"github.com/poiesic/docqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedReranker(results []ai.RerankResult, err error) *mock.MockReranker {
	return mock.NewMockReranker().WithRerankFunc(
		func(ctx context.Context, query string, documents []string, topN int) ([]ai.RerankResult, error) {
			return results, err
		})
}

func TestNewRerankRetriever_RequiresReranker(t *testing.T) {
	_, err := NewRerankRetriever(nil)
	assert.ErrorIs(t, err, ErrRerankerRequired)
}

func TestRerankRetriever_MapsPositionsToChunks(t *testing.T) {
	var gotDocs []string
	var gotTopN int
	reranker := mock.NewMockReranker().WithRerankFunc(
		func(ctx context.Context, query string, documents []string, topN int) ([]ai.RerankResult, error) {
			gotDocs = documents
			gotTopN = topN
			return []ai.RerankResult{
				{Index: 2, Score: 0.123456},
				{Index: 0, Score: 0.98765},
			}, nil
		})
	r, err := NewRerankRetriever(reranker)
	require.NoError(t, err)

	chunks := []*core.Chunk{
		chunk(100, 0, "first"),
		chunk(101, 1, "second"),
		chunk(102, 2, "third"),
	}
	passages, err := r.Retrieve(context.Background(), "question", chunks)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, gotDocs)
	assert.Equal(t, DefaultTopK, gotTopN)
	require.Len(t, passages, 2)
	assert.Equal(t, core.RetrievedPassage{ChunkId: 100, Index: 0, Text: "first", Score: 0.9877}, passages[0])
	assert.Equal(t, core.RetrievedPassage{ChunkId: 102, Index: 2, Text: "third", Score: 0.1235}, passages[1])
}

func TestRerankRetriever_TruncatesToTopK(t *testing.T) {
	reranker := fixedReranker([]ai.RerankResult{
		{Index: 0, Score: 0.1}, {Index: 1, Score: 0.4}, {Index: 2, Score: 0.3}, {Index: 3, Score: 0.2},
	}, nil)
	r, err := NewRerankRetriever(reranker, WithTopK(2))
	require.NoError(t, err)

	chunks := []*core.Chunk{chunk(1, 0, "a"), chunk(2, 1, "b"), chunk(3, 2, "c"), chunk(4, 3, "d")}
	passages, err := r.Retrieve(context.Background(), "q", chunks)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, core.ID(2), passages[0].ChunkId)
	assert.Equal(t, core.ID(3), passages[1].ChunkId)
}

func TestRerankRetriever_EmptyBatchSkipsService(t *testing.T) {
	reranker := mock.NewMockReranker()
	r, err := NewRerankRetriever(reranker)
	require.NoError(t, err)

	passages, err := r.Retrieve(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, passages)
	assert.Equal(t, 0, reranker.CallCount())
}

func TestRerankRetriever_Errors(t *testing.T) {
	chunks := []*core.Chunk{chunk(1, 0, "a"), chunk(2, 1, "b")}
	boom := errors.New("service unavailable")

	tests := []struct {
		name     string
		reranker *mock.MockReranker
		wrapped  error
	}{
		{"service failure", fixedReranker(nil, boom), boom},
		{"index out of range", fixedReranker([]ai.RerankResult{{Index: 2, Score: 1}}, nil), nil},
		{"negative index", fixedReranker([]ai.RerankResult{{Index: -1, Score: 1}}, nil), nil},
		{"duplicate index", fixedReranker([]ai.RerankResult{{Index: 0, Score: 1}, {Index: 0, Score: 0.5}}, nil), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRerankRetriever(tt.reranker)
			require.NoError(t, err)

			_, err = r.Retrieve(context.Background(), "q", chunks)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrRerank)
			if tt.wrapped != nil {
				assert.ErrorIs(t, err, tt.wrapped)
			}
		})
	}
}
