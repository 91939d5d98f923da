// Package imageproc turns image payloads into text input for the question
// pipeline. The extraction backend is pluggable; the engine ships with a
// deterministic built-in stub.
package imageproc

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/one-million-why/why-engine/pkg/observability/logging"
	"github.com/one-million-why/why-engine/pkg/types"
)

// ErrInvalidImageFormat rejects payloads that are not base64 data URLs for a
// supported image MIME type. Fails fast: image format errors are never
// retried.
var ErrInvalidImageFormat = errors.New("invalid image data format")

// dataURLPattern matches a base64 data URL for the supported image types.
var dataURLPattern = regexp.MustCompile(`^data:image/(jpeg|jpg|png|gif|webp);base64,`)

const minPayloadLength = 100

// meaningfulTextThreshold: extracted text shorter than this is treated as
// noise and the processor falls back to a description.
const meaningfulTextThreshold = 10

// Extractor is the vision backend contract.
type Extractor interface {
	// ExtractText performs OCR-style text extraction.
	ExtractText(ctx context.Context, imageData string) (string, error)
	// Describe produces a natural-language description of the image.
	Describe(ctx context.Context, imageData string) (string, error)
}

// Processor validates image payloads and runs the text-extraction-first
// strategy over an Extractor.
type Processor struct {
	extractor Extractor
}

// NewProcessor builds a processor over extractor. A nil extractor uses the
// built-in stub.
func NewProcessor(extractor Extractor) *Processor {
	if extractor == nil {
		extractor = NewStubExtractor()
	}
	return &Processor{extractor: extractor}
}

// ValidPayload reports whether imageData is a well-formed image data URL.
func ValidPayload(imageData string) bool {
	return dataURLPattern.MatchString(imageData) && len(imageData) > minPayloadLength
}

// Process validates the payload and produces either extracted text or a
// generated description.
func (p *Processor) Process(ctx context.Context, imageData string) (*types.ImageResult, error) {
	if !ValidPayload(imageData) {
		return nil, ErrInvalidImageFormat
	}

	extracted, err := p.extractor.ExtractText(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("image text extraction failed: %w", err)
	}

	if len(extracted) > meaningfulTextThreshold {
		return &types.ImageResult{
			ExtractedText:   extracted,
			Description:     fmt.Sprintf("Image contains text: %q", extracted),
			ConfidenceScore: 85,
			Method:          types.ImageMethodTextExtraction,
			ProcessedAt:     time.Now(),
		}, nil
	}

	description, err := p.extractor.Describe(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("image description failed: %w", err)
	}
	return &types.ImageResult{
		Description:     description,
		ConfidenceScore: 80,
		Method:          types.ImageMethodDescription,
		ProcessedAt:     time.Now(),
	}, nil
}

// ProcessBatch processes each payload, continuing past individual failures.
func (p *Processor) ProcessBatch(ctx context.Context, imageData []string) []*types.ImageResult {
	var results []*types.ImageResult
	for _, data := range imageData {
		r, err := p.Process(ctx, data)
		if err != nil {
			logging.Errorf("failed to process image in batch: %v", err)
			continue
		}
		results = append(results, r)
	}
	return results
}

// ConvertToInput picks the text the question pipeline should use.
func ConvertToInput(r *types.ImageResult) string {
	if r.ExtractedText != "" {
		return r.ExtractedText
	}
	return r.Description
}
