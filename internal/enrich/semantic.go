package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackzampolin/veridoc/internal/docmodel"
	"github.com/jackzampolin/veridoc/internal/providers"
)

const (
	// Texts shorter than this carry too little context for semantic
	// analysis to add anything.
	semanticMinTextLen = 200

	// Texts are truncated before prompting.
	semanticMaxTextLen = 6000

	semanticTemperature = 0.1
	semanticMaxTokens   = 1024

	// Maximum value length; longer values are sentence fragments, not data.
	semanticMaxValueLen = 150

	// Fields with non-matching names survive only above this confidence.
	semanticConfidenceOverride = 0.85
)

// Field-name patterns considered valuable output of semantic analysis.
var valuableFieldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i).*_(name|role|title|position|signatory|party|person|individual|contact)$`),
	regexp.MustCompile(`(?i).*_(id|number|code|reference|identifier|account|case|file|registration|license)$`),
	regexp.MustCompile(`(?i).*_(date|time|period|term|duration|expiry|expiration|deadline|schedule)$`),
	regexp.MustCompile(`(?i).*_(address|location|place|city|state|country|jurisdiction|venue|county|district)$`),
	regexp.MustCompile(`(?i).*_(amount|fee|cost|price|value|payment|salary|income|rate|percentage|total|sum)$`),
	regexp.MustCompile(`(?i).*_(status|condition|term|provision|clause|requirement|obligation|right|restriction|limitation)$`),
	regexp.MustCompile(`(?i).*_(type|category|classification|class|grade|level|tier|rank|priority)$`),
	regexp.MustCompile(`(?i)^(grantor|grantee|witness|guarantor|borrower|lender|employer|employee|buyer|seller|landlord|tenant|owner|occupant).*`),
}

// SemanticMiner asks a generative provider to find entities and
// relationships spread across the document text, adding them as extra
// fields. Failures are tolerated: semantic mining is a best-effort bonus
// pass and never blocks the pipeline.
type SemanticMiner struct {
	client providers.LLMClient
	model  string
	logger *slog.Logger
}

var _ Enricher = (*SemanticMiner)(nil)

// NewSemanticMiner returns a semantic enricher backed by the given client.
func NewSemanticMiner(client providers.LLMClient, model string, logger *slog.Logger) *SemanticMiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticMiner{client: client, model: model, logger: logger}
}

func (s *SemanticMiner) Name() string { return "semantic" }

func (s *SemanticMiner) Enrich(ctx context.Context, doc *docmodel.ExtractedDocument, sourceText string) error {
	if doc == nil || len(sourceText) < semanticMinTextLen {
		return nil
	}
	if doc.ExtraFields == nil {
		doc.ExtraFields = make(map[string]docmodel.FieldValue)
	}

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: "You are an expert in document analysis and entity extraction, specialized in identifying key information and relationships."},
			{Role: "user", Content: s.buildPrompt(doc, sourceText)},
		},
		Model:          s.model,
		Temperature:    semanticTemperature,
		MaxTokens:      semanticMaxTokens,
		ResponseFormat: &providers.ResponseFormat{Type: "json_object"},
	}

	result, err := s.client.Chat(ctx, req)
	if err != nil {
		s.logger.Warn("semantic enrichment skipped", "error", err)
		return nil
	}

	raw := result.ParsedJSON
	if raw == nil {
		raw, err = providers.ParseStructuredJSON(result.Content)
		if err != nil {
			s.logger.Warn("semantic enrichment reply unparseable", "error", err)
			return nil
		}
	}

	var reply map[string]any
	if err := json.Unmarshal(raw, &reply); err != nil {
		s.logger.Warn("semantic enrichment reply malformed", "error", err)
		return nil
	}

	added := 0
	for name, value := range reply {
		f, ok := acceptSemanticField(name, value)
		if !ok {
			continue
		}
		if docmodel.IsSchemaField(name) {
			continue
		}
		if _, exists := doc.Fields[name]; exists {
			continue
		}
		if doc.AddExtraField(name, f) {
			added++
		}
	}
	s.logger.Debug("semantic enrichment complete", "added", added)
	return nil
}

// acceptSemanticField filters a reply entry: descriptive name, short
// value, and either a valuable field name or high confidence.
func acceptSemanticField(name string, value any) (docmodel.FieldValue, bool) {
	if len(name) < 3 {
		return docmodel.FieldValue{}, false
	}

	f := docmodel.CoerceField(value, 0.8)
	if f.IsEmpty() {
		return docmodel.FieldValue{}, false
	}
	if s, ok := f.Value.(string); ok && len(s) > semanticMaxValueLen {
		return docmodel.FieldValue{}, false
	}

	for _, pat := range valuableFieldPatterns {
		if pat.MatchString(name) {
			return f, true
		}
	}
	if f.Confidence >= semanticConfidenceOverride {
		return f, true
	}
	return docmodel.FieldValue{}, false
}

func (s *SemanticMiner) buildPrompt(doc *docmodel.ExtractedDocument, sourceText string) string {
	if len(sourceText) > semanticMaxTextLen {
		sourceText = sourceText[:semanticMaxTextLen] + "..."
	}

	current, _ := json.MarshalIndent(doc.Fields, "", "  ")
	if len(current) > 1000 {
		current = append(current[:1000], []byte("...")...)
	}

	return fmt.Sprintf(`SEMANTIC ENTITY EXTRACTION

DOCUMENT TYPE: %s

DOCUMENT TEXT:
%s

CURRENTLY EXTRACTED FIELDS:
%s

%s

TASK:
Identify people, organizations, and entities with their roles; map relationships between them; and extract dates, locations, amounts, and identifiers with their purpose. Name every field as [CONTEXT]_[WHAT], where CONTEXT says whose information it is or what aspect it concerns, and WHAT says the data type. Examples: "grantor_name", "property_address", "payment_amount", "agreement_date".

QUALITY REQUIREMENTS:
1. Extract only meaningful data, never sentences or explanatory text.
2. Always use specific contextual field names, never generic names like "name" or "date".
3. Do not duplicate information already in the current fields.
4. Prefer fewer meaningful fields over many low-quality ones.

Return ONLY a JSON object mapping field names to {"value": ..., "confidence": 0-1} objects, with no explanations.`,
		doc.TypeLabel(), sourceText, current, s.typeGuidelines(doc.TypeLabel()))
}

// typeGuidelines returns document-family guidance for the prompt.
func (s *SemanticMiner) typeGuidelines(docType string) string {
	switch {
	case strings.Contains(docType, "land") || strings.Contains(docType, "agreement") || strings.Contains(docType, "contract"):
		return `GUIDELINES FOR AGREEMENTS:
- Look for "Grantor", "Grantee", "Lessor", "Lessee", "Buyer", "Seller" and extract names from patterns like '[NAME], (the "Grantor")' into grantor_name, grantee_name.
- Extract complete property addresses, legal descriptions, and references to "the Land" or "the Premises".
- Extract restrictions, conditions, and requirements as separate fields.
- Identify effective dates, termination dates, durations, and notice periods.`
	case strings.Contains(docType, "license") || strings.Contains(docType, "passport") || strings.Contains(docType, "id") || strings.Contains(docType, "card"):
		return `GUIDELINES FOR IDENTIFICATION DOCUMENTS:
- Extract the holder's full name as holder_name, plus personal attributes and address.
- Look for formatted ID numbers, document classes, and security codes.
- Extract issue and expiry dates and the issuing authority.
- Capture endorsements, vehicle categories, and secondary identifiers (NIN, MRZ).`
	case strings.Contains(docType, "invoice") || strings.Contains(docType, "receipt") || strings.Contains(docType, "financial"):
		return `GUIDELINES FOR FINANCIAL DOCUMENTS:
- Extract all currency amounts with their purpose (totals, subtotals, taxes, fees).
- Identify payer and payee, account holders, and billing addresses.
- Extract transaction dates, reference numbers, and itemized products or services.
- Capture payment methods, status, and schedules.`
	default:
		return `GENERAL GUIDELINES:
- Identify all named people and organizations and their roles in context.
- Extract dates with their purpose, all reference numbers, and identifiers.
- Capture locations, addresses, jurisdictions, and monetary amounts.
- Determine document status and validity information.`
	}
}
