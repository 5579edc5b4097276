package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractExtractor runs OCR on image payloads.
type TesseractExtractor struct {
	language string
}

func NewTesseractExtractor(language string) TesseractExtractor {
	if language == "" {
		language = "eng"
	}
	return TesseractExtractor{language: language}
}

// Extract recognizes text in an image. Confidence is the mean word confidence
// reported by tesseract, scaled to 0..1.
func (t TesseractExtractor) Extract(ctx context.Context, data []byte, _ string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
		return Result{}, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return Result{}, fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("read word confidences: %w", err)
	}
	return Result{Text: text, Confidence: meanConfidence(boxes), Engine: "tesseract"}, nil
}

func meanConfidence(boxes []gosseract.BoundingBox) float64 {
	if len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100
}
