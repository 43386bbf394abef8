// Package enrich mines additional fields out of recognized text after the
// main extraction pass. Three miners run in sequence: a pattern-based
// key-value miner, an address/contact miner, and an LLM-backed semantic
// miner. Enrichers only ever add fields; they never overwrite values a
// strategy already extracted.
package enrich

import (
	"context"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Enricher adds fields to a document using the source text.
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, doc *docmodel.ExtractedDocument, sourceText string) error
}
