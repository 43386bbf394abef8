// Package recognize runs an OCR provider over page images and assembles the
// recognized lines into page text for the extraction pipeline.
package recognize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/veridoc/internal/providers"
)

// Page is one recognized page: the ordered lines plus their joined text.
type Page struct {
	Number int                 `json:"page"`
	Lines  []providers.OCRLine `json:"lines"`
	Text   string              `json:"text"`
}

// Engine wraps an OCR provider with rate limiting and retry. Stateless from
// the caller's perspective; safe for concurrent use.
type Engine struct {
	provider providers.OCRProvider
	limiter  *providers.RateLimiter
	logger   *slog.Logger
}

// NewEngine builds an Engine around the given provider.
func NewEngine(provider providers.OCRProvider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	rpm := int(provider.RequestsPerSecond() * 60)
	if rpm < 1 {
		rpm = 60
	}
	return &Engine{
		provider: provider,
		limiter:  providers.NewRateLimiter(rpm),
		logger:   logger.With("component", "recognize", "provider", provider.Name()),
	}
}

// Name returns the backing provider's identifier.
func (e *Engine) Name() string {
	return e.provider.Name()
}

// RecognizePage runs OCR on one page image. Transient provider failures are
// retried with backoff up to the provider's retry budget.
func (e *Engine) RecognizePage(ctx context.Context, image []byte, pageNum int) (*Page, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("recognize: empty page image")
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("recognize: rate limit wait: %w", err)
	}

	var result *providers.OCRResult
	err := retry.Do(
		func() error {
			r, err := e.provider.ProcessImage(ctx, image, pageNum)
			if err != nil {
				if rle, ok := providers.IsRateLimitError(err); ok {
					e.limiter.Record429(rle.RetryAfter)
				}
				return err
			}
			result = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.provider.MaxRetries()+1)),
		retry.Delay(e.provider.RetryDelayBase()),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("recognize: %s failed on page %d: %w", e.provider.Name(), pageNum, err)
	}

	page := &Page{
		Number: pageNum,
		Lines:  result.Lines,
		Text:   result.Text(),
	}
	e.logger.Debug("page recognized",
		"page", pageNum,
		"lines", len(page.Lines),
		"chars", len(page.Text))
	return page, nil
}
