package extract

import (
	"strings"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Fields consulted by the sufficiency gate. Core fields identify the
// document; supporting fields corroborate it.
var (
	sufficiencyCore       = []string{"document_number"}
	sufficiencyNameFields = []string{"surname", "given_names"}
	sufficiencySupporting = []string{"date_of_birth", "date_of_issue", "date_of_expiry", "nationality", "country", "sex"}
)

// IsSufficient decides whether a text-strategy candidate is usable or the
// vision fallback must be tried. A document passes with at least one core
// field (type, document number, or a name) plus at least one supporting
// field; documents without identity structure (contracts, agreements) pass
// on a non-empty type plus any extra field.
func IsSufficient(doc *docmodel.ExtractedDocument) bool {
	if doc == nil {
		return false
	}

	core := 0
	if doc.TypeLabel() != "" {
		core++
	}
	for _, name := range sufficiencyCore {
		if fieldHasText(doc, name) {
			core++
		}
	}
	for _, name := range sufficiencyNameFields {
		if fieldHasText(doc, name) {
			core++
			break
		}
	}

	supporting := 0
	for _, name := range sufficiencySupporting {
		if fieldHasText(doc, name) {
			supporting++
		}
	}

	if core >= 1 && supporting >= 1 {
		return true
	}
	if doc.TypeLabel() != "" && len(doc.ExtraFields) > 0 {
		return true
	}
	return false
}

func fieldHasText(doc *docmodel.ExtractedDocument, name string) bool {
	f, ok := doc.Field(name)
	return ok && strings.TrimSpace(f.Text()) != ""
}
