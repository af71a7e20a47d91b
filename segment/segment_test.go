package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: " \n\t \n",
			want: nil,
		},
		{
			name: "simple sentences",
			text: "The cat sat. It was happy! Was it warm?",
			want: []string{"The cat sat.", "It was happy!", "Was it warm?"},
		},
		{
			name: "no terminal punctuation",
			text: "a fragment without an ending",
			want: []string{"a fragment without an ending"},
		},
		{
			name: "wrapped lines are joined",
			text: "This sentence was\nwrapped by the PDF\nrenderer. Next one.",
			want: []string{"This sentence was wrapped by the PDF renderer.", "Next one."},
		},
		{
			name: "blank line ends a sentence",
			text: "Introduction\n\nThe body starts here.",
			want: []string{"Introduction", "The body starts here."},
		},
		{
			name: "decimal numbers stay intact",
			text: "Pi is about 3.14 today. Done.",
			want: []string{"Pi is about 3.14 today.", "Done."},
		},
		{
			name: "closing quotes stay with the sentence",
			text: `He said "stop." Then he left.`,
			want: []string{`He said "stop."`, "Then he left."},
		},
		{
			name: "crlf paragraphs",
			text: "First.\r\n\r\nSecond...  Third",
			want: []string{"First.", "Second...", "Third"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentences(tt.text))
		})
	}
}
