// Package chunking packs sentences into bounded, overlapping chunks.
//
// Lengths are measured in runes. Chunks are built greedily from whole
// sentences, a short closing sentence is carried into the next chunk as
// overlap, sentences longer than the target are split on clause punctuation
// or whitespace, and a final pass merges undersized chunks.
package chunking

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidParameters indicates a target size or overlap Chunk cannot honor.
var ErrInvalidParameters = errors.New("invalid chunking parameters")

// Default parameters used by the ingestion pipeline.
const (
	DefaultTargetSize = 1000
	DefaultOverlap    = 100
)

// chunk is a chunk under construction. seeded marks a first sentence copied
// from the previous chunk as overlap.
type chunk struct {
	sentences []string
	length    int
	seeded    bool
}

func (c *chunk) add(s string) {
	if len(c.sentences) > 0 {
		c.length++
	}
	c.sentences = append(c.sentences, s)
	c.length += runeLen(s)
}

// fits reports whether s can be appended without exceeding target.
func (c *chunk) fits(s string, target int) bool {
	if len(c.sentences) == 0 {
		return runeLen(s) <= target
	}
	return c.length+1+runeLen(s) <= target
}

// seedOnly reports whether the chunk holds nothing but its overlap seed.
func (c *chunk) seedOnly() bool {
	return c.seeded && len(c.sentences) == 1
}

func (c *chunk) text() string {
	return strings.Join(c.sentences, " ")
}

// Validate checks chunking parameters.
func Validate(targetSize, overlap int) error {
	if targetSize <= 0 {
		return fmt.Errorf("%w: target size must be positive, got %d", ErrInvalidParameters, targetSize)
	}
	if overlap < 0 || overlap >= targetSize {
		return fmt.Errorf("%w: overlap must be >= 0 and < target size, got %d", ErrInvalidParameters, overlap)
	}
	return nil
}

// Chunk packs sentences into chunks of at most targetSize runes, except where
// the final merge pass joins an undersized chunk to its neighbour. Blank
// sentences are skipped. The result is a pure function of its inputs.
func Chunk(sentences []string, targetSize, overlap int) ([]string, error) {
	if err := Validate(targetSize, overlap); err != nil {
		return nil, err
	}

	var built []*chunk
	buf := &chunk{}

	flush := func() {
		if len(buf.sentences) > 0 && !buf.seedOnly() {
			built = append(built, buf)
		}
		buf = &chunk{}
	}

	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		if runeLen(s) > targetSize {
			// Earlier sentences go out first so output order follows the text.
			flush()
			for _, part := range splitOversized(s, targetSize) {
				built = append(built, &chunk{sentences: []string{part}, length: runeLen(part)})
			}
			continue
		}

		if buf.seedOnly() && !buf.fits(s, targetSize) {
			buf = &chunk{}
		}

		if buf.fits(s, targetSize) {
			buf.add(s)
			continue
		}

		last := buf.sentences[len(buf.sentences)-1]
		flush()
		if runeLen(last) < overlap && buf.fits(last, targetSize) {
			buf.add(last)
			buf.seeded = true
			if !buf.fits(s, targetSize) {
				buf = &chunk{}
			}
		}
		buf.add(s)
	}
	flush()

	merged := merge(built, targetSize)
	out := make([]string, len(merged))
	for i, c := range merged {
		out[i] = c.text()
	}
	return out, nil
}

// merge coalesces adjacent chunks. Neighbours are joined while the result
// stays within target, and any chunk shorter than target/2 absorbs its
// successor regardless of size. An undersized final chunk is folded into the
// one before it. The overlap seed of an absorbed chunk is dropped since it
// duplicates the end of the chunk it joins.
func merge(chunks []*chunk, target int) []*chunk {
	if len(chunks) < 2 {
		return chunks
	}
	half := target / 2

	out := []*chunk{chunks[0]}
	for _, next := range chunks[1:] {
		cur := out[len(out)-1]
		rest := next.sentences
		if next.seeded {
			rest = rest[1:]
		}
		joined := cur.length + 1 + joinedLen(rest)
		if joined <= target || cur.length < half {
			absorb(cur, rest)
			continue
		}
		out = append(out, next)
	}

	if n := len(out); n >= 2 && out[n-1].length < half {
		last := out[n-1]
		rest := last.sentences
		if last.seeded {
			rest = rest[1:]
		}
		absorb(out[n-2], rest)
		out = out[:n-1]
	}
	return out
}

func absorb(c *chunk, sentences []string) {
	for _, s := range sentences {
		c.add(s)
	}
}

func joinedLen(sentences []string) int {
	n := 0
	for i, s := range sentences {
		if i > 0 {
			n++
		}
		n += runeLen(s)
	}
	return n
}

// splitOversized breaks a sentence longer than target into pieces of at most
// target runes. Clause punctuation is preferred; whitespace is the fallback
// and a single token longer than target is cut by runes.
func splitOversized(s string, target int) []string {
	parts := splitAfterDelimiters(s)
	if len(parts) < 2 {
		parts = strings.Fields(s)
	}

	var pieces []string
	for _, p := range parts {
		if runeLen(p) <= target {
			pieces = append(pieces, p)
			continue
		}
		for _, word := range strings.Fields(p) {
			if runeLen(word) <= target {
				pieces = append(pieces, word)
				continue
			}
			pieces = append(pieces, hardSplit(word, target)...)
		}
	}
	return pack(pieces, target)
}

// splitAfterDelimiters splits after every ',', ';' or ':' keeping the
// delimiter with the preceding part.
func splitAfterDelimiters(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if r == ',' || r == ';' || r == ':' {
			if p := strings.TrimSpace(s[start : i+1]); p != "" {
				parts = append(parts, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

func hardSplit(word string, target int) []string {
	var out []string
	runes := []rune(word)
	for len(runes) > target {
		out = append(out, string(runes[:target]))
		runes = runes[target:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// pack greedily joins pieces with single spaces into strings of at most target runes.
func pack(pieces []string, target int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, p := range pieces {
		pl := runeLen(p)
		if curLen > 0 && curLen+1+pl > target {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(p)
		curLen += pl
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
