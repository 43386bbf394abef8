package enrich

import (
	"context"
	"regexp"
	"strings"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Address patterns tried in order; the longest match wins.
var addressPatterns = []*regexp.Regexp{
	// Labeled address
	regexp.MustCompile(`(?i)(?:address|residence|location)[\s:]+([\w\s.,#\-/\\]+?)(?:\s*(?:city|state|zip|postal|country|phone|\n|$))`),
	// Street address with number and street-type suffix
	regexp.MustCompile(`(?i)(\d+\s+[A-Za-z\s.,]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct)(?:[,\s]+(?:[A-Za-z\s]+))?)`),
	// PO Box
	regexp.MustCompile(`(?i)(P\.?O\.?\s*Box\s+\d+[,\s]+[A-Za-z\s]+(?:[,\s]+\w+)?)`),
	// City, state, zip
	regexp.MustCompile(`([A-Za-z0-9\s.,#\-/\\]+,[A-Za-z\s]+,\s*[A-Za-z]{2}\s*\d{5}(?:-\d{4})?)`),
}

var (
	statePatternRe        = regexp.MustCompile(`(?i)(?:state|province|region)[\s:]+([\w\s.]{2,30}?)(?:\s*(?:zip|postal|country|phone|\n|$))`)
	jurisdictionPatternRe = regexp.MustCompile(`(?i)(?:jurisdiction|authority|governed\s+by)[\s:]+([\w\s.]{2,50}?)(?:\s*(?:zip|postal|country|phone|\n|$))`)
	phonePatternRe        = regexp.MustCompile(`(?i)(?:phone|tel|telephone|mobile|contact)[\s:]+([0-9\s()\-.+]{7,20})`)
	emailPatternRe        = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

const minAddressLen = 8

// AddressMiner pulls address, jurisdiction, and contact details out of
// recognized text, filling in schema fields the strategies left empty.
// Existing values are never overwritten.
type AddressMiner struct{}

var _ Enricher = AddressMiner{}

func (AddressMiner) Name() string { return "address" }

func (AddressMiner) Enrich(_ context.Context, doc *docmodel.ExtractedDocument, sourceText string) error {
	if doc == nil || strings.TrimSpace(sourceText) == "" {
		return nil
	}

	for name, f := range mineAddressFields(sourceText) {
		if _, exists := doc.Field(name); exists {
			continue
		}
		doc.SetField(name, f)
	}
	return nil
}

// mineAddressFields extracts address and contact fields from text with
// per-pattern confidences reflecting each pattern's precision.
func mineAddressFields(text string) map[string]docmodel.FieldValue {
	found := make(map[string]docmodel.FieldValue)

	var primary string
	for _, pat := range addressPatterns {
		matches := collectMatches(pat, text)
		if len(matches) == 0 {
			continue
		}
		candidate := longest(matches)
		if len(candidate) > minAddressLen {
			primary = candidate
			found["address"] = docmodel.NewField(primary, 0.85)
			break
		}
	}

	if primary != "" {
		for _, pat := range addressPatterns {
			var secondary []string
			for _, m := range collectMatches(pat, text) {
				if m != primary && len(m) > minAddressLen {
					secondary = append(secondary, m)
				}
			}
			if len(secondary) > 0 {
				found["secondary_address"] = docmodel.NewField(longest(secondary), 0.75)
				break
			}
		}
	}

	if m := statePatternRe.FindStringSubmatch(text); m != nil {
		found["state_province"] = docmodel.NewField(strings.TrimSpace(m[1]), 0.8)
	}
	if m := jurisdictionPatternRe.FindStringSubmatch(text); m != nil {
		found["jurisdiction"] = docmodel.NewField(strings.TrimSpace(m[1]), 0.8)
	}
	if m := phonePatternRe.FindStringSubmatch(text); m != nil {
		found["phone_number"] = docmodel.NewField(strings.TrimSpace(m[1]), 0.9)
	}
	if m := emailPatternRe.FindString(text); m != "" {
		found["email"] = docmodel.NewField(strings.TrimSpace(m), 0.95)
	}

	return found
}

func collectMatches(pat *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range pat.FindAllStringSubmatch(text, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func longest(values []string) string {
	best := ""
	for _, v := range values {
		if len(v) > len(best) {
			best = v
		}
	}
	return best
}
