// Package extract turns document text or page imagery into structured
// documents via generative providers. Two interchangeable strategies are
// provided: a text-grounded strategy that prompts over recognized text, and
// a vision-grounded strategy that sends the page image directly. Both
// normalize the provider's loose JSON reply into a docmodel.ExtractedDocument.
package extract

import (
	"context"
	"errors"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Strategy method names. These flow into ExtractionOutcome.Method and
// select verification multipliers and filter thresholds downstream.
const (
	MethodText   = "text"
	MethodVision = "vision"
)

// Input carries what a strategy may consume: recognized text for the text
// strategy, raw page image bytes for the vision strategy.
type Input struct {
	Text      string
	Image     []byte
	RequestID string
}

// Strategy is one extraction backend.
type Strategy interface {
	// Name returns the method name (MethodText or MethodVision).
	Name() string

	// Extract produces a structured document from the input, or an error
	// when the backing provider fails or returns an unusable reply.
	Extract(ctx context.Context, in Input) (*docmodel.ExtractedDocument, error)
}

// ErrEmptyInput is returned when a strategy is invoked with nothing to
// work on (blank text for the text strategy, no image for vision).
var ErrEmptyInput = errors.New("extract: empty input")
