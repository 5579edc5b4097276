package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the text layer of a PDF. Scanned PDFs without a text layer
// yield an empty result with zero confidence.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, data []byte, _ string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Result{}, fmt.Errorf("read pdf text: %w", err)
	}

	text := buf.String()
	confidence := 1.0
	if strings.TrimSpace(text) == "" {
		confidence = 0
	}
	return Result{Text: text, Confidence: confidence, Engine: "pdf"}, nil
}
