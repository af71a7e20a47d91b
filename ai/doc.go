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


// Package ai provides abstractions for AI services used in docqa.
//
// This package defines interfaces for the model-backed operations the
// question answering flow depends on. The domain packages depend on these
// abstractions rather than on concrete clients.
//
// # Interfaces
//
//   - Embedder: Generates vector embeddings from text
//   - Reranker: Scores texts against a query with a cross-encoder
//   - Synthesizer: Answers a question from retrieved passages
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: Embeddings and chat over OpenAI-compatible APIs (langchaingo)
//   - ai/rerank: HTTP client for /rerank endpoints (Cohere, Jina, TEI, vLLM)
//   - ai/vertex: Answer synthesis on Vertex AI Gemini models
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder, mock.NewMockReranker) return CONCRETE types to enable
// behavior injection and call counting.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434/v1"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	answer, err := provider.Synthesizer().Synthesize(ctx, "Who?", passages)
package ai
