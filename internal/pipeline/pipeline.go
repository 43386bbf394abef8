// Package pipeline drives the full extraction flow for one page: segmenting
// the recognized text, running the text strategy with vision fallback per
// segment, grounding and filtering the candidate, enriching it, and
// assembling the per-page result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/veridoc/internal/docmodel"
	"github.com/jackzampolin/veridoc/internal/enrich"
	"github.com/jackzampolin/veridoc/internal/extract"
	"github.com/jackzampolin/veridoc/internal/providers"
	"github.com/jackzampolin/veridoc/internal/segment"
	"github.com/jackzampolin/veridoc/internal/verify"
)

// segmentState tracks where one segment is in the fallback cascade.
type segmentState string

const (
	statePending        segmentState = "pending"
	stateTextAttempt    segmentState = "text_attempt"
	stateVisionFallback segmentState = "vision_fallback"
	stateSuccess        segmentState = "success"
	stateFailed         segmentState = "failed"
)

// ErrCompleteExtractionFailure is returned when every segment failed and the
// whole-page fallback pass failed too. No partial result accompanies it.
var ErrCompleteExtractionFailure = errors.New("complete extraction failure")

// errInsufficientCandidate marks a text candidate that parsed fine but did
// not carry enough identifying data to accept without the vision fallback.
var errInsufficientCandidate = errors.New("candidate did not meet sufficiency requirements")

// AllStrategiesFailedError records why both strategies failed for one
// segment. It lands in that segment's outcome and never aborts siblings.
type AllStrategiesFailedError struct {
	Ordinal   int
	TextErr   error
	VisionErr error
}

func (e *AllStrategiesFailedError) Error() string {
	return fmt.Sprintf("all extraction strategies failed for segment %d: text: %v; vision: %v",
		e.Ordinal, e.TextErr, e.VisionErr)
}

func (e *AllStrategiesFailedError) Unwrap() []error {
	return []error{e.TextErr, e.VisionErr}
}

// Options tunes the verification and filtering applied to each strategy's
// output. Zero values fall back to the package defaults in verify.
type Options struct {
	// Confidence floor for fields produced by the text strategy.
	TextThreshold float64

	// Confidence floor for fields produced by the vision strategy. Stricter
	// because vision output is not grounded in recognized text.
	VisionThreshold float64

	// Confidence multipliers applied to ungrounded fields, per strategy.
	TextMultiplier   float64
	VisionMultiplier float64

	// OverlapRatio is the word-overlap fraction for grounding multi-word
	// values. Zero means verify.WordOverlapRatio.
	OverlapRatio float64

	// MaxProviderCalls bounds how many strategy calls may be in flight
	// across all concurrent requests. Defaults to 8.
	MaxProviderCalls int

	// KeepRawCandidates attaches the pre-verification candidate to each
	// successful outcome for diagnostics.
	KeepRawCandidates bool
}

func (o Options) withDefaults() Options {
	if o.TextThreshold == 0 {
		o.TextThreshold = verify.TextConfidenceThreshold
	}
	if o.VisionThreshold == 0 {
		o.VisionThreshold = verify.VisionConfidenceThreshold
	}
	if o.TextMultiplier == 0 {
		o.TextMultiplier = verify.TextUngroundedMultiplier
	}
	if o.VisionMultiplier == 0 {
		o.VisionMultiplier = verify.VisionUngroundedMultiplier
	}
	if o.MaxProviderCalls == 0 {
		o.MaxProviderCalls = 8
	}
	return o
}

// Config assembles a Pipeline.
type Config struct {
	Text      extract.Strategy
	Vision    extract.Strategy
	Segmenter *segment.Segmenter
	Enrichers []enrich.Enricher
	Options   Options
	Logger    *slog.Logger
}

// Pipeline processes pages. Safe for concurrent use; each request owns its
// own document graph and only the provider-call gate is shared.
type Pipeline struct {
	text      extract.Strategy
	vision    extract.Strategy
	segmenter *segment.Segmenter
	enrichers []enrich.Enricher
	opts      Options
	gate      chan struct{}
	logger    *slog.Logger
}

// New validates the config and builds a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Text == nil {
		return nil, fmt.Errorf("pipeline: text strategy is required")
	}
	if cfg.Vision == nil {
		return nil, fmt.Errorf("pipeline: vision strategy is required")
	}
	if cfg.Segmenter == nil {
		cfg.Segmenter = segment.New(segment.Options{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	opts := cfg.Options.withDefaults()
	return &Pipeline{
		text:      cfg.Text,
		vision:    cfg.Vision,
		segmenter: cfg.Segmenter,
		enrichers: cfg.Enrichers,
		opts:      opts,
		gate:      make(chan struct{}, opts.MaxProviderCalls),
		logger:    cfg.Logger.With("component", "pipeline"),
	}, nil
}

// PageText joins recognized lines into the page's full text.
func PageText(lines []providers.OCRLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, line.Text)
	}
	return strings.Join(parts, "\n")
}

// ProcessPage runs the full pipeline over one page. Segments are processed
// in order; each gets an outcome even when its strategies fail. If no
// segment succeeds, one whole-page pass re-runs the cascade over the
// unsegmented text; if that fails too, ErrCompleteExtractionFailure is
// returned and no result is produced.
func (p *Pipeline) ProcessPage(ctx context.Context, pageImage []byte, lines []providers.OCRLine) (*docmodel.ExtractionResult, error) {
	start := time.Now()
	fullText := PageText(lines)
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("%w: no recognized text on page", ErrCompleteExtractionFailure)
	}

	pageID := uuid.NewString()
	sourcePage := 1
	if len(lines) > 0 && lines[0].Page > 0 {
		sourcePage = lines[0].Page
	}
	segs := p.segmenter.Split(fullText)
	for i := range segs {
		segs[i].SourcePage = sourcePage
	}
	p.logger.Info("processing page",
		"request_id", pageID,
		"text_chars", len(fullText),
		"segments", len(segs))

	result := &docmodel.ExtractionResult{}
	successes := 0
	for _, seg := range segs {
		outcome := p.processSegment(ctx, seg, pageImage, fmt.Sprintf("%s-seg%d", pageID, seg.Ordinal))
		if outcome.Status == docmodel.StatusSuccess {
			successes++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if successes == 0 {
		p.logger.Warn("no segment produced a document, running whole-page fallback", "request_id", pageID)
		whole := docmodel.DocumentSegment{Text: fullText, SourcePage: sourcePage}
		outcome := p.processSegment(ctx, whole, pageImage, pageID+"-page")
		if outcome.Status != docmodel.StatusSuccess {
			return nil, fmt.Errorf("%w: %s", ErrCompleteExtractionFailure, outcome.Error)
		}
		result.Outcomes = []docmodel.ExtractionOutcome{outcome}
	}

	result.Summarize(time.Since(start).Milliseconds())
	return result, nil
}

// processSegment walks the fallback state machine for one segment: text
// attempt first, vision on provider error or an insufficient candidate,
// failure only when both are exhausted. The vision result is accepted
// without a sufficiency check; verification and filtering still apply.
func (p *Pipeline) processSegment(ctx context.Context, seg docmodel.DocumentSegment, pageImage []byte, requestID string) docmodel.ExtractionOutcome {
	var (
		state     = statePending
		doc       *docmodel.ExtractedDocument
		method    string
		textErr   error
		visionErr error
	)
	ordinal := seg.Ordinal

	for state != stateSuccess && state != stateFailed {
		switch state {
		case statePending:
			state = stateTextAttempt

		case stateTextAttempt:
			d, err := p.callStrategy(ctx, p.text, extract.Input{Text: seg.Text, RequestID: requestID})
			if err != nil {
				textErr = err
				p.logger.Warn("text strategy failed, falling back to vision",
					"request_id", requestID, "segment", ordinal, "error", err)
				state = stateVisionFallback
				continue
			}
			if !extract.IsSufficient(d) {
				textErr = errInsufficientCandidate
				p.logger.Info("text candidate insufficient, falling back to vision",
					"request_id", requestID, "segment", ordinal)
				state = stateVisionFallback
				continue
			}
			doc, method = d, p.text.Name()
			state = stateSuccess

		case stateVisionFallback:
			d, err := p.callStrategy(ctx, p.vision, extract.Input{Image: pageImage, RequestID: requestID})
			if err != nil {
				visionErr = err
				state = stateFailed
				continue
			}
			doc, method = d, p.vision.Name()
			state = stateSuccess
		}
	}

	if state == stateFailed {
		failure := &AllStrategiesFailedError{Ordinal: ordinal, TextErr: textErr, VisionErr: visionErr}
		p.logger.Error("segment extraction failed", "request_id", requestID, "segment", ordinal, "error", failure)
		return docmodel.ExtractionOutcome{
			Status:  docmodel.StatusFailed,
			Segment: ordinal,
			Error:   failure.Error(),
		}
	}

	outcome := docmodel.ExtractionOutcome{
		Status:   docmodel.StatusSuccess,
		Segment:  ordinal,
		Method:   method,
		Document: doc,
	}
	if p.opts.KeepRawCandidates {
		outcome.Raw = snapshot(doc)
	}
	p.finishDocument(ctx, doc, seg.Text, method)
	p.logger.Info("segment extracted",
		"request_id", requestID,
		"segment", ordinal,
		"method", method,
		"type", doc.TypeLabel(),
		"fields", len(doc.Fields),
		"extra_fields", len(doc.ExtraFields))
	return outcome
}

// finishDocument applies the post-extraction stages in order: grounding
// verification, confidence filtering, then the enrichers, then extra-field
// cleanup. Multiplier and threshold depend on which strategy produced the
// document.
func (p *Pipeline) finishDocument(ctx context.Context, doc *docmodel.ExtractedDocument, sourceText, method string) {
	multiplier, threshold := p.opts.TextMultiplier, p.opts.TextThreshold
	if method == extract.MethodVision {
		multiplier, threshold = p.opts.VisionMultiplier, p.opts.VisionThreshold
	}

	verifier := verify.NewVerifier(multiplier)
	verifier.OverlapRatio = p.opts.OverlapRatio
	verifier.Verify(doc, sourceText)
	verify.FilterByConfidence(doc, threshold)

	for _, e := range p.enrichers {
		if err := e.Enrich(ctx, doc, sourceText); err != nil {
			p.logger.Warn("enricher failed", "enricher", e.Name(), "error", err)
		}
	}
	enrich.CleanExtraFields(doc)
}

// callStrategy runs one strategy call through the shared gate so a slow
// provider cannot stall unrelated requests past the configured bound.
func (p *Pipeline) callStrategy(ctx context.Context, s extract.Strategy, in extract.Input) (*docmodel.ExtractedDocument, error) {
	select {
	case p.gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.gate }()
	return s.Extract(ctx, in)
}

// snapshot copies a document's top-level field maps. Verification and
// filtering replace map entries rather than mutating values in place, so a
// shallow copy is a stable pre-verification view.
func snapshot(doc *docmodel.ExtractedDocument) *docmodel.ExtractedDocument {
	if doc == nil {
		return nil
	}
	cp := *doc
	cp.Fields = make(map[string]docmodel.FieldValue, len(doc.Fields))
	for k, v := range doc.Fields {
		cp.Fields[k] = v
	}
	if doc.ExtraFields != nil {
		cp.ExtraFields = make(map[string]docmodel.FieldValue, len(doc.ExtraFields))
		for k, v := range doc.ExtraFields {
			cp.ExtraFields[k] = v
		}
	}
	return &cp
}
