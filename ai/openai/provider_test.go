package openai

import (
	"context"
	"testing"

	"github.com/poiesic/docqa/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingSynthesizer struct {
	closed bool
}

func (s *closingSynthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	return "answer", nil
}

func (s *closingSynthesizer) Close() error {
	s.closed = true
	return nil
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(ai.DefaultConfig())
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Reranker())
	assert.NotNil(t, provider.Synthesizer())
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	cfg := ai.DefaultConfig()
	cfg.EmbeddingModel = ""

	_, err := NewProvider(cfg)
	assert.Error(t, err)
}

func TestNewProvider_WithSynthesizer(t *testing.T) {
	synth := &closingSynthesizer{}
	provider, err := NewProvider(ai.DefaultConfig(), WithSynthesizer(synth))
	require.NoError(t, err)

	assert.Same(t, synth, provider.Synthesizer())
	require.NoError(t, provider.Close())
	assert.True(t, synth.closed)
}

func TestToken(t *testing.T) {
	assert.Equal(t, "none", token(""))
	assert.Equal(t, "sk-1", token("sk-1"))
}
