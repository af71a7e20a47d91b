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


package ai

import (
	"errors"
	"strings"
)

// Synthesizer backends.
const (
	SynthesizerOpenAI = "openai"
	SynthesizerVertex = "vertex"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion API used to synthesize answers.
	ChatHost string

	// RerankHost is the base URL of a service exposing POST /rerank.
	// Example: "http://localhost:8787/v1" for a local text-embeddings-inference server
	RerankHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// ChatModel is the model identifier used for answer synthesis.
	// Example: "qwen2.5:3b", "gpt-4o-mini", "gemini-1.5-pro"
	ChatModel string

	// RerankModel is the cross-encoder model identifier.
	// Example: "BAAI/bge-reranker-base", "rerank-english-v3.0"
	RerankModel string

	// APIKey authenticates against the embedding and chat hosts.
	// Local servers ignore it.
	APIKey string

	// RerankAPIKey authenticates against the rerank host.
	RerankAPIKey string

	// Synthesizer selects the answer backend: "openai" or "vertex".
	// Default: "openai"
	Synthesizer string

	// VertexProject and VertexRegion locate the Vertex AI endpoint when
	// Synthesizer is "vertex".
	VertexProject string
	VertexRegion  string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithRerankHost sets the rerank service host URL.
func WithRerankHost(host string) ConfigOption {
	return func(c *Config) {
		c.RerankHost = host
	}
}

// WithHost sets the embedding, chat and rerank hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
		c.RerankHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithRerankModel sets the reranker model identifier.
func WithRerankModel(model string) ConfigOption {
	return func(c *Config) {
		c.RerankModel = model
	}
}

// WithAPIKey sets the key sent to the embedding and chat hosts.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRerankAPIKey sets the key sent to the rerank host.
func WithRerankAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.RerankAPIKey = key
	}
}

// WithVertex selects Vertex AI for answer synthesis.
func WithVertex(project, region string) ConfigOption {
	return func(c *Config) {
		c.Synthesizer = SynthesizerVertex
		c.VertexProject = project
		c.VertexRegion = region
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, embedding, chat and rerank use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		ChatHost:       defaultHost,
		RerankHost:     defaultHost,
		EmbeddingModel: "embeddinggemma",
		ChatModel:      "qwen2.5:3b",
		RerankModel:    "BAAI/bge-reranker-base",
		Synthesizer:    SynthesizerOpenAI,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("text-embedding-3-small"),
//   )
//
// Example with a separate reranker:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithRerankHost("http://localhost:8787"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	c.ChatHost = withV1(c.ChatHost)
	c.RerankHost = withV1(c.RerankHost)
	c.Synthesizer = strings.ToLower(strings.TrimSpace(c.Synthesizer))
	if c.Synthesizer == "" {
		c.Synthesizer = SynthesizerOpenAI
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	// Remove trailing slash if present before adding /v1
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.RerankHost == "" {
		return errors.New("ai config: RerankHost is required")
	}
	if c.RerankModel == "" {
		return errors.New("ai config: RerankModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	switch c.Synthesizer {
	case SynthesizerOpenAI:
		if c.ChatHost == "" {
			return errors.New("ai config: ChatHost is required")
		}
	case SynthesizerVertex:
		if c.VertexProject == "" || c.VertexRegion == "" {
			return errors.New("ai config: VertexProject and VertexRegion are required for the vertex synthesizer")
		}
	default:
		return errors.New("ai config: Synthesizer must be \"openai\" or \"vertex\"")
	}
	return nil
}
