// Package vertex implements answer synthesis on Vertex AI Gemini models.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/poiesic/docqa/ai"
)

// ErrNoCandidates indicates the model returned nothing usable.
var ErrNoCandidates = errors.New("vertex: no candidates returned")

// Synthesizer implements ai.Synthesizer with a Gemini model.
type Synthesizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

var _ ai.Synthesizer = (*Synthesizer)(nil)

// NewSynthesizer connects to Vertex AI in the project and region from config.
// ChatModel names the Gemini model, e.g. "gemini-1.5-pro".
func NewSynthesizer(ctx context.Context, config *ai.Config) (*Synthesizer, error) {
	if config.VertexProject == "" || config.VertexRegion == "" {
		return nil, fmt.Errorf("vertex: project and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, config.VertexProject, config.VertexRegion)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := client.GenerativeModel(config.ChatModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ai.SystemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}

	return &Synthesizer{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "vertex-synthesizer"),
	}, nil
}

// Synthesize answers question from passages with a single generation call.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(ai.FormatQuestion(question, passages)))
	if err != nil {
		s.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	answer := responseText(resp)
	if answer == "" {
		return "", ErrNoCandidates
	}
	return answer, nil
}

// Close releases the Vertex AI client.
func (s *Synthesizer) Close() error {
	return s.client.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
