// Package segment splits extracted text into ordered sentences.
package segment

import (
	"regexp"
	"strings"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
	whitespace     = regexp.MustCompile(`\s+`)
	// A terminator run, optional closing quotes or brackets, then whitespace.
	sentenceEnd = regexp.MustCompile(`[.!?]+["'”’)\]]*\s+`)
)

// Sentences returns the sentences of text in order. Blank lines always end a
// sentence; inside a paragraph sentences end at '.', '!' or '?' followed by
// whitespace. Whitespace inside a sentence is collapsed to single spaces and
// empty sentences are dropped.
func Sentences(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var sentences []string
	for _, paragraph := range paragraphBreak.Split(text, -1) {
		paragraph = strings.TrimSpace(whitespace.ReplaceAllString(paragraph, " "))
		if paragraph == "" {
			continue
		}
		// Trailing space lets the final sentence match like the others.
		paragraph += " "
		start := 0
		for _, loc := range sentenceEnd.FindAllStringIndex(paragraph, -1) {
			if s := strings.TrimSpace(paragraph[start:loc[1]]); s != "" {
				sentences = append(sentences, s)
			}
			start = loc[1]
		}
		if s := strings.TrimSpace(paragraph[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
