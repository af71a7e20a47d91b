package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	codeFence    = regexp.MustCompile("(?s)```[^\\n`]*\\n(.*?)```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+(.*?)[ \t#]*$`)
	blockquote   = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	horizontal   = regexp.MustCompile(`(?m)^[ \t]*[-*_]{3,}[ \t]*$`)
	listItem     = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+[.)])[ \t]+(.*)$`)
	emphasis     = regexp.MustCompile(`(\*{1,3}|_{2,3})([^*_\n]+)(\*{1,3}|_{2,3})`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
)

// StripMarkdown removes common markdown formatting. Headings, list items and
// code blocks become paragraphs of their own.
func StripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	content = codeFence.ReplaceAllString(content, "\n$1\n")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = horizontal.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "\n$1\n")
	content = blockquote.ReplaceAllString(content, "")
	content = listItem.ReplaceAllString(content, "\n$1\n")
	content = emphasis.ReplaceAllString(content, "$2")

	content = manyNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// Title returns the first level-one heading of a markdown document, or a
// title derived from filename when there is none.
func Title(content, filename string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			if t := strings.TrimSpace(strings.TrimPrefix(line, "#")); t != "" {
				return t
			}
		}
	}

	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
