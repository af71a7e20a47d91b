package retrieval

import "github.com/poiesic/docqa/core"

// Monitor provides hooks to observe retrieval.
// Implement this interface to track intermediate steps and results.
type Monitor interface {
	Start(documentID core.ID, question string, strategy core.Strategy)
	AfterChunkLoad(chunks []*core.Chunk)
	AfterQueryEmbedding(query core.Embedding)
	Finish(passages []core.RetrievedPassage)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.ID, _ string, _ core.Strategy) {}
func (n *noopMonitor) AfterChunkLoad(_ []*core.Chunk)             {}
func (n *noopMonitor) AfterQueryEmbedding(_ core.Embedding)       {}
func (n *noopMonitor) Finish(_ []core.RetrievedPassage)           {}
