package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatQuestion(t *testing.T) {
	got := FormatQuestion(" Where did the cat sit? ", []string{"The cat sat on the mat. ", "Dogs bark."})

	assert.Equal(t, "Passages:\n\n[1] The cat sat on the mat.\n\n[2] Dogs bark.\n\nQuestion: Where did the cat sit?", got)
}

func TestFormatQuestion_NoPassages(t *testing.T) {
	assert.Equal(t, "Passages:\n\nQuestion: why?", FormatQuestion("why?", nil))
}
