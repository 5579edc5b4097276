// Package ocr extracts plain text from uploaded documents.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrTooLarge           = errors.New("document exceeds extraction size limit")
	ErrEmptyInput         = errors.New("document is empty")
)

// Result is the text recovered from a document.
type Result struct {
	Text       string
	Confidence float64
	Engine     string
}

// Extractor recovers text from raw document bytes.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (Result, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, data []byte, contentType string) (Result, error)

func (f ExtractorFunc) Extract(ctx context.Context, data []byte, contentType string) (Result, error) {
	return f(ctx, data, contentType)
}

// Router dispatches to an extractor based on the sniffed content type of the payload.
type Router struct {
	PDF      Extractor
	Image    Extractor
	Text     Extractor
	MaxBytes int64
}

// NewRouter wires the default extractors. language is a tesseract language code.
func NewRouter(language string, maxBytes int64) *Router {
	return &Router{
		PDF:      PDFExtractor{},
		Image:    NewTesseractExtractor(language),
		Text:     TextExtractor{},
		MaxBytes: maxBytes,
	}
}

// Extract implements Extractor.
func (r *Router) Extract(ctx context.Context, data []byte, contentType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, ErrEmptyInput
	}
	if r.MaxBytes > 0 && int64(len(data)) > r.MaxBytes {
		return Result{}, ErrTooLarge
	}

	detected := DetectContentType(data, contentType)
	var ext Extractor
	switch {
	case detected == "application/pdf":
		ext = r.PDF
	case strings.HasPrefix(detected, "image/"):
		ext = r.Image
	case strings.HasPrefix(detected, "text/"):
		ext = r.Text
	}
	if ext == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedContent, detected)
	}
	return ext.Extract(ctx, data, detected)
}

// DetectContentType sniffs data and falls back to the declared type when sniffing
// yields nothing more specific than application/octet-stream.
func DetectContentType(data []byte, declared string) string {
	mt := mimetype.Detect(data)
	if mt.Is("application/octet-stream") && declared != "" {
		return baseType(declared)
	}
	return baseType(mt.String())
}

func baseType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// TextExtractor passes UTF-8 text through unchanged.
type TextExtractor struct{}

func (TextExtractor) Extract(_ context.Context, data []byte, _ string) (Result, error) {
	if !utf8.Valid(data) {
		return Result{}, fmt.Errorf("%w: text is not valid utf-8", ErrUnsupportedContent)
	}
	return Result{Text: string(data), Confidence: 1, Engine: "text"}, nil
}
