package ai

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs a chat model to answer strictly from supplied passages.
const SystemPrompt = `You answer questions about a single document. You are given numbered passages
retrieved from that document, most relevant first.

Rules:
- Use only information stated in the passages. Do not rely on outside knowledge.
- If the passages do not contain the answer, say that the document does not say.
- Be concise. Quote short phrases from the passages when they support the answer.
- Do not mention passage numbers unless asked where the answer came from.`

// FormatQuestion renders the user turn of a synthesis request.
func FormatQuestion(question string, passages []string) string {
	var b strings.Builder
	b.WriteString("Passages:\n\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(p))
	}
	b.WriteString("Question: ")
	b.WriteString(strings.TrimSpace(question))
	return b.String()
}
