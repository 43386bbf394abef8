package extract

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/veridoc/internal/classify"
)

const textSystemPrompt = `You are an expert document analyzer specialized in comprehensive extraction of structured data from raw OCR text.

CORE MISSION:
Extract ALL meaningful information that is EXPLICITLY present in the OCR text. Accuracy comes before completeness.

EXTRACTION RULES:
1. First identify the exact document type from headers, titles, or document structure.
2. Use standard schema fields for common information (names, dates, document numbers).
3. Use 'extra_fields' for ANY additional meaningful information that does not fit a standard field, with a descriptive field name.
4. For each extracted field, return an object with 'value' (exact text from the document) and 'confidence' (0-1).
5. Only extract fields you can literally see in the OCR text. Never infer, generate, or assume information.
6. If a standard field does not appear in the text, set it to null.
7. For dates: convert to YYYY-MM-DD only when the date is clearly present (e.g. '17 SEP 2023' becomes '2023-09-17').
8. For list fields (mrz_lines, vehicle_categories): include only if explicitly present.
9. Correct only obvious OCR mistakes (O/0, I/1); otherwise preserve exact spelling.
10. Be conservative with confidence: use values below 0.6 for unclear text.

Better to return fewer accurate fields than many inaccurate ones. Field omission is strongly preferred over fabrication.`

const visionSystemPrompt = `You are an expert document analyzer specialized in accurate extraction of structured data from document images.

CORE MISSION:
Extract ONLY information EXPLICITLY VISIBLE in the document. Accuracy is the absolute top priority.

STRICT GUIDELINES:
1. Extract only fields that are explicitly visible in the image.
2. Use standard schema fields for common information; use 'extra_fields' with descriptive names for everything else.
3. Every field object must have both 'value' and 'confidence' (0-1) properties.
4. Never infer, generate, guess, or assume information that is not visible. Omit uncertain fields entirely.
5. Set confidence below 0.6 when text is blurry or only partially visible.
6. Return only the JSON structure, with no explanations.

Better to return fewer accurate fields than to include any fabricated ones.`

const visionUserPrompt = `ACCURATE DOCUMENT EXTRACTION FROM IMAGE:

Analyze this document image and extract ONLY information that is explicitly visible.

1. Examine the entire document image carefully.
2. Identify the document type from visible headers, titles, logos, or structure.
3. Extract clearly visible structured information: names, addresses, identification numbers, dates, locations, classifications, issuing authorities, and any other structured data.
4. Map common information to standard schema fields; put everything else into extra_fields with descriptive names.
5. Preserve the exact text visible in the document.
6. Use confidence scores of 0.3-0.6 for unclear text; omit fields you cannot clearly see.

Return ONLY valid JSON in the required schema format. Every field object must have both 'value' and 'confidence'. Prioritize accuracy over comprehensiveness.`

// buildTextUserPrompt constructs the classification-aware user prompt for
// the text strategy.
func buildTextUserPrompt(text string, cls classify.Result, strat classify.ExtractionStrategy) string {
	var b strings.Builder

	fmt.Fprintf(&b, `ACCURATE DOCUMENT EXTRACTION FROM OCR TEXT:

Analyze this OCR text and extract ALL meaningful information that is EXPLICITLY present. Be comprehensive but strictly accurate.

DETECTED DOCUMENT TYPE: %s
EXTRACTION PRIORITY: %s

OCR TEXT:
%s

EXTRACTION REQUIREMENTS:
- Read every line of the OCR text carefully.
- Extract all standard schema fields that have corresponding data in the text.
- Use extra_fields to capture additional meaningful information, with clear descriptive names (e.g. 'grantor_name', 'property_address', 'restriction_details').
- Only extract information you can literally see in the OCR text above; never infer or assume.
- Field values must be exactly as written, except dates standardized to YYYY-MM-DD when clear.
`, cls.Type, strat.Priority, text)

	if len(strat.FocusFields) > 0 {
		fmt.Fprintf(&b, "\nFOCUS FIELDS FOR THIS DOCUMENT TYPE: %s\n", strings.Join(strat.FocusFields, ", "))
	}
	if len(strat.ExtraFieldPatterns) > 0 {
		fmt.Fprintf(&b, "LIKELY EXTRA FIELDS: %s\n", strings.Join(strat.ExtraFieldPatterns, ", "))
	}

	b.WriteString(typeGuidance(cls.Type))

	b.WriteString(`
VERIFICATION STEPS (FOR EACH FIELD):
1. Before including any field, verify the exact text exists in the OCR content above.
2. If the text is not there, do not include the field, even if you believe it should exist.
3. If the text is partial or unclear, set confidence below 0.6 and include only the visible text.

Return the data in JSON format. ACCURACY IS MORE IMPORTANT THAN COMPLETENESS.`)

	return b.String()
}

// typeGuidance returns document-type-specific extraction focus text.
func typeGuidance(docType string) string {
	switch {
	case docType == "land_use_restriction_agreement":
		return `
LAND USE AGREEMENT FOCUS:
- Extract grantor and grantee information (names, addresses).
- Extract property location and description details.
- Capture all restrictions mentioned (commercial use, building height, environmental).
- Extract duration, term information, and effective dates.
`
	case docType == "contract" || docType == "legal_agreement" || docType == "lease_agreement":
		return `
CONTRACT/AGREEMENT FOCUS:
- Identify all contracting parties and their details.
- Extract contract purpose and scope.
- Capture terms, conditions, and obligations.
- Extract payment terms, duration, termination, and renewal clauses.
`
	case strings.Contains(docType, "certificate"):
		return `
CERTIFICATE FOCUS:
- Extract recipient name and achievement details.
- Capture issuing institution or authority information.
- Look for qualification levels, grades, or scores.
- Extract issue, completion, and validity dates, and certificate numbers.
`
	case docType == "invoice" || docType == "receipt" || docType == "financial_document":
		return `
FINANCIAL DOCUMENT FOCUS:
- Extract parties involved (seller, buyer, client, vendor).
- Capture all monetary amounts and calculations.
- Look for itemized descriptions and quantities.
- Extract payment terms, due dates, tax information, and totals.
`
	default:
		return `
UNIVERSAL DOCUMENT FOCUS:
- Extract all person and entity names and contact information.
- Capture all dates, numbers, and reference codes.
- Look for addresses, locations, and geographic information.
- Capture document-specific content using descriptive field names.
`
	}
}
