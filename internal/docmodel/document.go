package docmodel

import "strings"

// DocumentSegment is a contiguous slice of recognized text believed to hold
// exactly one document.
type DocumentSegment struct {
	Text       string `json:"text"`
	SourcePage int    `json:"source_page"`
	Ordinal    int    `json:"ordinal"`
}

// ExtractedDocument holds the structured output for a single segment.
type ExtractedDocument struct {
	DocumentID       string                `json:"document_id"`
	Type             FieldValue            `json:"document_type"`
	ExtractionMethod FieldValue            `json:"extraction_method"`
	ConfidenceScore  float64               `json:"confidence_score,omitempty"`
	Fields           map[string]FieldValue `json:"fields"`
	ExtraFields      map[string]FieldValue `json:"extra_fields,omitempty"`
}

// TypeLabel returns the document type as a lowercase trimmed string, or ""
// when the type is unset or non-textual.
func (d *ExtractedDocument) TypeLabel() string {
	s, ok := d.Type.Value.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Field looks up a named schema field. Empty fields are reported as absent.
func (d *ExtractedDocument) Field(name string) (FieldValue, bool) {
	f, ok := d.Fields[name]
	if !ok || f.IsEmpty() {
		return FieldValue{}, false
	}
	return f, true
}

// SetField stores a schema field, dropping empty values and clamping
// confidence.
func (d *ExtractedDocument) SetField(name string, f FieldValue) {
	if f.IsEmpty() {
		return
	}
	if d.Fields == nil {
		d.Fields = make(map[string]FieldValue)
	}
	d.Fields[name] = f.Clamp()
}

// AddExtraField stores a non-schema field unless the name is already taken.
// It reports whether the field was added.
func (d *ExtractedDocument) AddExtraField(name string, f FieldValue) bool {
	if f.IsEmpty() {
		return false
	}
	if d.ExtraFields == nil {
		d.ExtraFields = make(map[string]FieldValue)
	}
	if _, exists := d.ExtraFields[name]; exists {
		return false
	}
	d.ExtraFields[name] = f.Clamp()
	return true
}

// schemaFields names every field the extraction schema recognizes directly.
// Anything else a provider returns lands in ExtraFields.
var schemaFields = map[string]struct{}{
	"country":                  {},
	"surname":                  {},
	"given_names":              {},
	"full_name":                {},
	"nationality":              {},
	"sex":                      {},
	"date_of_birth":            {},
	"place_of_birth":           {},
	"document_number":          {},
	"date_of_issue":            {},
	"date_of_expiry":           {},
	"issuing_authority":        {},
	"nin":                      {},
	"id_card_type":             {},
	"mrz_lines":                {},
	"passport_type":            {},
	"license_class":            {},
	"vehicle_categories":       {},
	"restrictions":             {},
	"endorsements":             {},
	"voting_district":          {},
	"voter_number":             {},
	"polling_unit":             {},
	"voter_status":             {},
	"nin_tracking_id":          {},
	"permit_type":              {},
	"permit_category":          {},
	"birth_certificate_number": {},
	"birth_registration_date":  {},
	"parents_names":            {},
	"address":                  {},
	"secondary_address":        {},
	"phone_number":             {},
	"email":                    {},
	"state_province":           {},
	"jurisdiction":             {},
}

// listFields are schema fields whose value is always a list.
var listFields = map[string]struct{}{
	"mrz_lines":          {},
	"vehicle_categories": {},
}

// plainFields are top-level response keys that are plain scalars rather than
// confidence-wrapped fields.
var plainFields = map[string]struct{}{
	"confidence_score": {},
}

// IsSchemaField reports whether name is a recognized schema field.
func IsSchemaField(name string) bool {
	_, ok := schemaFields[name]
	return ok
}

// IsListField reports whether name is a list-valued schema field.
func IsListField(name string) bool {
	_, ok := listFields[name]
	return ok
}

// IsPlainField reports whether name is a plain scalar response key.
func IsPlainField(name string) bool {
	_, ok := plainFields[name]
	return ok
}

// SchemaFieldNames returns all schema field names in unspecified order.
func SchemaFieldNames() []string {
	names := make([]string, 0, len(schemaFields))
	for name := range schemaFields {
		names = append(names, name)
	}
	return names
}
