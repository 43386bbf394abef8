// Package verify grounds extracted fields against source text and filters
// low-confidence output. Verification suppresses fabricated content: a
// field whose value cannot be located in the recognized text has its
// confidence downgraded so the filter can remove it.
package verify

import (
	"regexp"
	"strings"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Confidence multipliers applied to unverified fields. Vision output is
// downgraded harder since it never saw the recognized text.
const (
	TextUngroundedMultiplier   = 0.5
	VisionUngroundedMultiplier = 0.4
)

// WordOverlapRatio is the fraction of a multi-word value's words that must
// appear in the source text for the value to count as grounded.
const WordOverlapRatio = 0.6

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	numericRunRe = regexp.MustCompile(`\d+`)
	digitRunRe   = regexp.MustCompile(`\d{2,}`)
)

// Verifier checks extracted field values against the source text.
type Verifier struct {
	// Multiplier applied to the confidence of unverified fields.
	Multiplier float64

	// OverlapRatio overrides WordOverlapRatio when non-zero.
	OverlapRatio float64
}

// NewVerifier returns a verifier with the given downgrade multiplier.
func NewVerifier(multiplier float64) *Verifier {
	return &Verifier{Multiplier: multiplier}
}

func (v *Verifier) overlapRatio() float64 {
	if v.OverlapRatio > 0 {
		return v.OverlapRatio
	}
	return WordOverlapRatio
}

// Verify checks every field of doc against sourceText, downgrading the
// confidence of values it cannot ground. Type and extraction method are
// exempt. Fields are never removed here; deletion is the filter's job.
// Confidence is only ever lowered, never raised.
func (v *Verifier) Verify(doc *docmodel.ExtractedDocument, sourceText string) {
	if doc == nil || strings.TrimSpace(sourceText) == "" {
		return
	}

	for name, f := range doc.Fields {
		doc.Fields[name] = v.verifyField(name, f, sourceText)
	}
	for name, f := range doc.ExtraFields {
		doc.ExtraFields[name] = v.verifyField(name, f, sourceText)
	}
}

func (v *Verifier) verifyField(name string, f docmodel.FieldValue, sourceText string) docmodel.FieldValue {
	if f.IsEmpty() {
		return f
	}
	if fieldGrounded(name, f.Text(), sourceText, v.overlapRatio()) {
		return f
	}
	f.Confidence = f.Confidence * v.Multiplier
	return f
}

// FieldGrounded reports whether value can be located in sourceText. The
// comparison is case-insensitive with whitespace normalized; date, name,
// and identifier fields get looser component-wise checks to tolerate
// recognition engine formatting differences.
func FieldGrounded(fieldName, value, sourceText string) bool {
	return fieldGrounded(fieldName, value, sourceText, WordOverlapRatio)
}

func fieldGrounded(fieldName, value, sourceText string, overlapRatio float64) bool {
	cleanValue := normalizeWhitespace(value)
	cleanText := normalizeWhitespace(sourceText)
	if cleanValue == "" {
		return false
	}

	if strings.Contains(cleanText, cleanValue) {
		return true
	}

	// Recognition engines drop or insert spaces; compare without any.
	noSpaceValue := stripWhitespace(cleanValue)
	noSpaceText := stripWhitespace(cleanText)
	if noSpaceValue != "" && strings.Contains(noSpaceText, noSpaceValue) {
		return true
	}

	lowerName := strings.ToLower(fieldName)

	if containsAny(lowerName, "date", "expiry", "issue", "birth") {
		runs := numericRunRe.FindAllString(cleanValue, -1)
		if len(runs) > 0 && allContained(cleanText, runs) {
			return true
		}
	}

	if containsAny(lowerName, "name", "person") {
		parts := strings.Fields(cleanValue)
		if len(parts) > 1 {
			significant := parts[:0]
			for _, p := range parts {
				if len(p) >= 2 {
					significant = append(significant, p)
				}
			}
			if len(significant) > 0 && allContained(cleanText, significant) {
				return true
			}
		}
	}

	if containsAny(lowerName, "number", "id", "code") {
		runs := digitRunRe.FindAllString(cleanValue, -1)
		if len(runs) > 0 && allContained(cleanText, runs) {
			return true
		}
	}

	// Multi-word values tolerate partial recognition: grounded when enough
	// of their words appear somewhere in the text.
	if words := strings.Fields(cleanValue); len(words) > 1 {
		matched := 0
		for _, w := range words {
			if strings.Contains(cleanText, w) {
				matched++
			}
		}
		if float64(matched)/float64(len(words)) >= overlapRatio {
			return true
		}
	}

	return false
}

func normalizeWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func stripWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(s, "")
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func allContained(text string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}
