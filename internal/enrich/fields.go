package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Confidence assigned to mined fields: key-value patterns are weaker
// evidence than the semantic role patterns.
const (
	keyValueConfidence = 0.7
	semanticConfidence = 0.8
)

// keyValuePatterns find labeled data in recognized text. Each pattern
// captures a key and a value.
var keyValuePatterns = []*regexp.Regexp{
	// Key: Value
	regexp.MustCompile(`([A-Za-z][A-Za-z\s\-_]+)[:\s]+([^\n:]{2,100}?)(?:\n|$)`),
	// Key - Value
	regexp.MustCompile(`([A-Za-z][A-Za-z\s\-_]+)[\s\-]+([^\n:]{2,100}?)(?:\n|$)`),
	// Table-like: Key............Value
	regexp.MustCompile(`([A-Za-z][A-Za-z\s\-_]+)\.{3,}([^\n.]{2,100}?)(?:\n|$)`),
	// Named legal roles
	regexp.MustCompile(`(?i)(Grantor|Grantee|Borrower|Lender|Witness|Guarantor|Buyer|Seller|Owner|Tenant|Landlord)[\s:\-]+([^\n:]{2,100}?)(?:\n|$)`),
	// Monetary labels
	regexp.MustCompile(`(?i)(Amount|Sum|Total|Payment|Fee|Price|Cost|Value)[\s:\-]+[$€£]?([0-9,.]+)(?:\s?[A-Za-z]+)?(?:\n|$)`),
}

// semanticPatterns extract specific relationships with templated field
// names; {0}, {1} are replaced by the normalized capture groups.
var semanticPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`\[([A-Za-z\s]+)\],?\s*\(?(?:the|as)\s*["']?([A-Za-z\s]+)["']?\)?`), "{1}_{0}"},
	{regexp.MustCompile(`(?i)(?:property|land|asset|premises|building)\s+(?:at|located\s+at|known\s+as)\s+([^,\n]{5,100})`), "property_location"},
	{regexp.MustCompile(`(?i)(?:amount|sum|fee|payment)\s+of\s+[$€£]?([0-9,.]+)`), "payment_amount"},
	{regexp.MustCompile(`(?i)(?:dated|effective|expires|terminated)\s+(?:on|as\s+of)?\s+([A-Za-z0-9\s,]+\d{4})`), "relevant_date"},
	{regexp.MustCompile(`(?i)(?:Document|Agreement|Contract|Form|Certificate)\s+(?:No\.|Number|ID|#)\s*:?\s*([A-Za-z0-9\-_]+)`), "document_identifier"},
}

var stopWordKeys = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "for": true,
	"with": true, "this": true, "that": true, "in": true, "on": true,
	"at": true, "by": true, "to": true, "from": true, "of": true,
	"a": true, "an": true, "shall": true, "will": true, "may": true,
	"can": true, "all": true, "any": true, "such": true, "been": true,
	"have": true,
}

var nonDataValues = map[string]bool{
	"please": true, "yes": true, "no": true, "n/a": true, "na": true,
	"none": true, "not applicable": true, "see above": true,
	"as above": true, "as stated": true, "as mentioned": true,
}

var meaningfulKeyTerms = []string{
	"name", "date", "number", "id", "address", "code", "amount", "fee",
	"grantor", "grantee", "owner", "tenant", "buyer", "seller",
	"restriction", "condition", "limitation", "requirement",
	"property", "land", "asset", "payment", "term", "expiry",
}

var (
	structuralKeyRe = regexp.MustCompile(`^(page|section|paragraph|item|clause|article|chapter)_\d+$`)
	keyCleanRe      = regexp.MustCompile(`[^\w_]`)
	trailingPunctRe = regexp.MustCompile(`[.;!?]$`)
)

// KeyValueMiner finds labeled data in recognized text that the extraction
// strategies missed, routing survivors into extra fields.
type KeyValueMiner struct{}

var _ Enricher = KeyValueMiner{}

func (KeyValueMiner) Name() string { return "key-value" }

type candidate struct {
	key        string
	value      string
	confidence float64
}

func (KeyValueMiner) Enrich(_ context.Context, doc *docmodel.ExtractedDocument, sourceText string) error {
	if doc == nil || strings.TrimSpace(sourceText) == "" {
		return nil
	}
	if doc.ExtraFields == nil {
		doc.ExtraFields = make(map[string]docmodel.FieldValue)
	}

	var candidates []candidate
	for _, pat := range keyValuePatterns {
		for _, m := range pat.FindAllStringSubmatch(sourceText, -1) {
			key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m[1])), " ", "_")
			candidates = append(candidates, candidate{key, strings.TrimSpace(m[2]), keyValueConfidence})
		}
	}
	for _, sp := range semanticPatterns {
		for _, m := range sp.re.FindAllStringSubmatch(sourceText, -1) {
			name := sp.format
			for i, group := range m[1:] {
				slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(group)), " ", "_")
				name = strings.ReplaceAll(name, fmt.Sprintf("{%d}", i), slug)
			}
			candidates = append(candidates, candidate{name, strings.TrimSpace(m[1]), semanticConfidence})
		}
	}

	for _, c := range keepMeaningful(candidates) {
		key := NormalizeFieldName(c.key)
		if docmodel.IsSchemaField(key) {
			continue
		}
		if _, taken := doc.Fields[key]; taken {
			continue
		}
		base := key
		for n := 1; ; n++ {
			if _, exists := doc.ExtraFields[key]; !exists {
				break
			}
			key = fmt.Sprintf("%s_%d", base, n)
		}
		doc.ExtraFields[key] = docmodel.NewField(c.value, c.confidence)
	}
	return nil
}

// keepMeaningful drops candidates with junk keys or values: stop-word
// keys, boilerplate values, sentence fragments, and keys that name
// document structure rather than data.
func keepMeaningful(candidates []candidate) []candidate {
	var kept []candidate
	for _, c := range candidates {
		if len(c.value) < 2 {
			continue
		}
		if stopWordKeys[c.key] || hasStopWordPrefix(c.key) {
			continue
		}
		if nonDataValues[strings.ToLower(c.value)] {
			continue
		}
		if len(strings.Fields(c.value)) > 10 && trailingPunctRe.MatchString(c.value) {
			continue
		}
		if len(c.key) > 30 || structuralKeyRe.MatchString(c.key) {
			continue
		}
		key := strings.ToLower(keyCleanRe.ReplaceAllString(c.key, ""))
		if key == "" {
			continue
		}
		if !keyIsMeaningful(key) && c.confidence < semanticConfidence {
			continue
		}
		c.key = key
		kept = append(kept, c)
	}
	return kept
}

func hasStopWordPrefix(key string) bool {
	for word := range stopWordKeys {
		if strings.HasPrefix(key, word+"_") {
			return true
		}
	}
	return false
}

func keyIsMeaningful(key string) bool {
	for _, term := range meaningfulKeyTerms {
		if strings.Contains(key, term) {
			return true
		}
	}
	return false
}
