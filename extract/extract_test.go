package extract

import (
	"context"
	"testing"

	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"report.pdf", ContentTypePDF, false},
		{"REPORT.PDF", ContentTypePDF, false},
		{"notes.md", ContentTypeMarkdown, false},
		{"notes.markdown", ContentTypeMarkdown, false},
		{"readme.txt", ContentTypeText, false},
		{"image.png", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := ContentTypeFor(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrValidation)
				assert.ErrorIs(t, err, ErrUnsupportedContentType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Text(t *testing.T) {
	e := New()
	text, err := e.Extract(context.Background(), []byte("  Hello there. General Kenobi!\n"), ContentTypeText)
	require.NoError(t, err)
	assert.Equal(t, "Hello there. General Kenobi!", text)
}

func TestExtract_Markdown(t *testing.T) {
	e := New()
	md := "# Intro\nSome **bold** text here. More.\n- item one\n- item two\n"

	text, err := e.Extract(context.Background(), []byte(md), ContentTypeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "Intro\n\nSome bold text here. More.\n\nitem one\n\nitem two", text)

	assert.Equal(t,
		[]string{"Intro", "Some bold text here.", "More.", "item one", "item two"},
		segment.Sentences(text))
}

func TestExtract_Errors(t *testing.T) {
	e := New()
	ctx := context.Background()

	tests := []struct {
		name        string
		data        []byte
		contentType string
	}{
		{"empty text", []byte("   \n\n"), ContentTypeText},
		{"invalid utf8", []byte{0xff, 0xfe, 0xfd}, ContentTypeText},
		{"not a pdf", []byte("definitely not a pdf"), ContentTypePDF},
		{"unknown type", []byte("data"), "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(ctx, tt.data, tt.contentType)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrExtraction)
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"link", "See [the docs](http://x.y/z) now.", "See the docs now."},
		{"image", "Before ![alt](img.png) after.", "Before  after."},
		{"inline code", "Call `Run()` first.", "Call Run() first."},
		{"heading", "Text.\n## Section ##\nMore.", "Text.\n\nSection\n\nMore."},
		{"numbered list", "1. first\n2) second", "first\n\nsecond"},
		{"blockquote", "> quoted line", "quoted line"},
		{"rule", "Above.\n\n---\n\nBelow.", "Above.\n\nBelow."},
		{"code block", "Intro.\n```go\nx := 1\n```\nOutro.", "Intro.\n\nx := 1\n\nOutro."},
		{"snake case kept", "use snake_case names", "use snake_case names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkdown(tt.in))
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Getting Started", Title("intro\n# Getting Started\n## Other", "x.md"))
	assert.Equal(t, "annual report 2024", Title("no heading", "dir/annual_report-2024.pdf"))
	assert.Equal(t, "notes", Title("", `C:\docs\notes.txt`))
}
