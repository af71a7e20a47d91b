// Package extract turns uploaded bytes into plain text ready for segmentation.
//
// PDF files are validated with pdfcpu and read page by page through the
// langchaingo PDF loader. Markdown is loaded as text and stripped of its
// formatting, with headings and list items kept as separate paragraphs so
// that they never run into the surrounding sentences.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/poiesic/docqa/core"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// Supported content types.
const (
	ContentTypePDF      = "application/pdf"
	ContentTypeMarkdown = "text/markdown"
	ContentTypeText     = "text/plain"
)

var (
	// ErrUnsupportedContentType indicates a file type no extractor handles.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrNoText indicates that a document yielded no text.
	ErrNoText = errors.New("document contains no text")
)

// Extractor converts raw document bytes into plain text.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

// ContentTypeFor maps a filename to one of the supported content types.
// Unknown extensions are a validation error.
func ContentTypeFor(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return ContentTypePDF, nil
	case ".md", ".markdown":
		return ContentTypeMarkdown, nil
	case ".txt", ".text":
		return ContentTypeText, nil
	}
	return "", fmt.Errorf("%w: %w: %q", core.ErrValidation, ErrUnsupportedContentType, filename)
}

// Option configures a DocumentExtractor.
type Option func(*DocumentExtractor)

// WithLogger sets the logger used by the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *DocumentExtractor) {
		e.logger = logger
	}
}

// DocumentExtractor handles PDF, Markdown and plain text.
type DocumentExtractor struct {
	logger *slog.Logger
}

var _ Extractor = (*DocumentExtractor)(nil)

// New creates an extractor for every supported content type.
func New(opts ...Option) *DocumentExtractor {
	e := &DocumentExtractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "extractor")
	return e
}

// Extract returns the text of data. Failures wrap core.ErrExtraction.
func (e *DocumentExtractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	var (
		text string
		err  error
	)
	switch contentType {
	case ContentTypePDF:
		text, err = e.extractPDF(ctx, data)
	case ContentTypeMarkdown:
		text, err = e.extractText(ctx, data)
		text = StripMarkdown(text)
	case ContentTypeText:
		text, err = e.extractText(ctx, data)
	default:
		return "", fmt.Errorf("%w: %w: %q", core.ErrExtraction, ErrUnsupportedContentType, contentType)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", core.ErrExtraction, ErrNoText)
	}
	return text, nil
}

func (e *DocumentExtractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return "", fmt.Errorf("%w: invalid pdf: %w", core.ErrExtraction, err)
	}
	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("%w: failed to count pages: %w", core.ErrExtraction, err)
	}
	if pages == 0 {
		return "", fmt.Errorf("%w: %w", core.ErrExtraction, ErrNoText)
	}

	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read pdf: %w", core.ErrExtraction, err)
	}
	e.logger.Debug("extracted pdf", "pages", pages, "loaded", len(docs))
	return joinPages(docs), nil
}

func (e *DocumentExtractor) extractText(ctx context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", core.ErrExtraction)
	}
	docs, err := documentloaders.NewText(bytes.NewReader(data)).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read text: %w", core.ErrExtraction, err)
	}
	return joinPages(docs), nil
}

// joinPages separates pages with a blank line so that no sentence spans a page break.
func joinPages(docs []schema.Document) string {
	pages := make([]string, 0, len(docs))
	for _, d := range docs {
		if p := strings.TrimSpace(d.PageContent); p != "" {
			pages = append(pages, p)
		}
	}
	return strings.Join(pages, "\n\n")
}
