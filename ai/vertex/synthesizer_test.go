package vertex

import (
	"context"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/poiesic/docqa/ai"
	"github.com/stretchr/testify/assert"
)

func TestNewSynthesizer_RequiresProjectAndRegion(t *testing.T) {
	_, err := NewSynthesizer(context.Background(), ai.NewConfig())
	assert.Error(t, err)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("The cat "), genai.Text("sat. ")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	assert.Equal(t, "The cat sat.", responseText(resp))

	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}
