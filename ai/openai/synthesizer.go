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
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/docqa/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyResponse indicates the model returned no choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Synthesizer implements ai.Synthesizer using OpenAI-compatible chat APIs.
type Synthesizer struct {
	client llms.Model
	logger *slog.Logger
}

// newSynthesizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSynthesizer(config *ai.Config) (*Synthesizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(token(config.APIKey)),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Synthesizer{
		client: client,
		logger: slog.Default().With("component", "openai-synthesizer"),
	}, nil
}

// NewSynthesizer creates a new answer synthesizer using the provided configuration.
//
// Returns ai.Synthesizer interface to enforce abstraction.
func NewSynthesizer(config *ai.Config) (ai.Synthesizer, error) {
	return newSynthesizer(config)
}

// Synthesize answers question from passages with a single chat completion.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(ai.SystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(ai.FormatQuestion(question, passages)),
			},
		},
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		s.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		s.logger.Debug("no choices returned from model")
		return "", ErrEmptyResponse
	}

	answer := strings.TrimSpace(response.Choices[0].Content)
	s.logger.Debug("synthesized answer", "passages", len(passages), "length", len(answer))
	return answer, nil
}
