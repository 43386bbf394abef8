package classify

// ExtractionStrategy tunes the extraction prompt for a document type:
// which schema fields to prioritize, which extra-field names to look for,
// and the overall emphasis of the prompt.
type ExtractionStrategy struct {
	FocusFields        []string
	ExtraFieldPatterns []string
	Priority           string
}

// Extraction priorities.
const (
	PriorityPersonalInfo  = "personal_info"
	PriorityLegalContent  = "legal_content"
	PriorityComprehensive = "comprehensive"
)

var strategies = map[string]ExtractionStrategy{
	"international_passport": {
		FocusFields:        []string{"surname", "given_names", "nationality", "document_number", "date_of_birth", "date_of_expiry"},
		ExtraFieldPatterns: []string{"mrz_lines", "passport_type", "issuing_authority"},
		Priority:           PriorityPersonalInfo,
	},
	"national_id_card": {
		FocusFields:        []string{"full_name", "document_number", "date_of_birth", "nin"},
		ExtraFieldPatterns: []string{"id_card_type", "state_of_origin"},
		Priority:           PriorityPersonalInfo,
	},
	"drivers_license": {
		FocusFields:        []string{"full_name", "document_number", "date_of_birth", "date_of_expiry"},
		ExtraFieldPatterns: []string{"license_class", "vehicle_categories", "restrictions"},
		Priority:           PriorityPersonalInfo,
	},
	"land_use_restriction_agreement": {
		FocusFields:        []string{"date_of_issue"},
		ExtraFieldPatterns: []string{"grantor_name", "grantee_name", "property_location", "restrictions", "duration", "effective_date"},
		Priority:           PriorityLegalContent,
	},
	"contract": {
		FocusFields:        []string{"date_of_issue"},
		ExtraFieldPatterns: []string{"party_1", "party_2", "contract_terms", "duration", "effective_date", "termination_date"},
		Priority:           PriorityLegalContent,
	},
}

var defaultStrategy = ExtractionStrategy{
	FocusFields:        []string{"document_type", "date_of_issue"},
	ExtraFieldPatterns: []string{"all_meaningful_content"},
	Priority:           PriorityComprehensive,
}

// StrategyFor returns the extraction strategy for a document type, falling
// back to a comprehensive default for types without a tuned entry.
func StrategyFor(documentType string) ExtractionStrategy {
	if s, ok := strategies[documentType]; ok {
		return s
	}
	return defaultStrategy
}
