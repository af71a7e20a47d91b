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


package openai

import (
	"io"
	"log/slog"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/ai/rerank"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// Reranking goes to the configured /rerank endpoint.
type Provider struct {
	config      *ai.Config
	embedder    *Embedder
	reranker    ai.Reranker
	synthesizer ai.Synthesizer
	logger      *slog.Logger
}

// ProviderOption customizes a Provider.
type ProviderOption func(*Provider)

// WithSynthesizer replaces the chat-completion synthesizer, e.g. with a
// Vertex AI one. If it implements io.Closer the provider closes it.
func WithSynthesizer(s ai.Synthesizer) ProviderOption {
	return func(p *Provider) {
		p.synthesizer = s
	}
}

// WithReranker replaces the HTTP reranker.
func WithReranker(r ai.Reranker) ProviderOption {
	return func(p *Provider) {
		p.reranker = r
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create embedder (using internal constructor for concrete type)
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config:   config,
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-provider"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.reranker == nil {
		if p.reranker, err = rerank.NewClient(config); err != nil {
			return nil, err
		}
	}
	if p.synthesizer == nil {
		if p.synthesizer, err = newSynthesizer(config); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Reranker returns the reranking service.
func (p *Provider) Reranker() ai.Reranker {
	return p.reranker
}

// Synthesizer returns the answer synthesis service.
func (p *Provider) Synthesizer() ai.Synthesizer {
	return p.synthesizer
}

// Close releases resources held by the provider.
// The langchaingo clients need no cleanup; an injected synthesizer may.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	if c, ok := p.synthesizer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
