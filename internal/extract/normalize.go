package extract

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Default confidences applied during normalization: wrapped objects missing
// a confidence get 0.8, bare values get 0.7.
const (
	wrappedDefaultConfidence = 0.8
	bareDefaultConfidence    = 0.7
)

// Normalize converts a provider's generic JSON reply into an
// ExtractedDocument. Loose values are coerced into FieldValue objects,
// declared list fields always become lists, unrecognized top-level keys are
// routed into extra_fields, and page-numbering artifacts are stripped.
// Date-named fields are standardized to ISO form where recognizable.
func Normalize(raw json.RawMessage) (*docmodel.ExtractedDocument, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding extraction reply: %w", err)
	}

	doc := &docmodel.ExtractedDocument{
		DocumentID:  uuid.NewString(),
		Fields:      make(map[string]docmodel.FieldValue),
		ExtraFields: make(map[string]docmodel.FieldValue),
	}

	for key, value := range data {
		if value == nil {
			continue
		}
		switch {
		case key == "page_number":
			// Artifact of paged prompting; never part of the document.
		case key == "document_type":
			doc.Type = coerce(key, value)
		case key == "extraction_method":
			doc.ExtractionMethod = coerce(key, value)
		case key == "extra_fields":
			if extras, ok := value.(map[string]any); ok {
				for name, ev := range extras {
					if ev == nil {
						continue
					}
					if f := coerce(name, ev); !f.IsEmpty() {
						doc.ExtraFields[name] = f
					}
				}
			}
		case docmodel.IsPlainField(key):
			if n, ok := value.(float64); ok {
				doc.ConfidenceScore = n
			} else if wrapped, ok := value.(map[string]any); ok {
				if n, ok := wrapped["value"].(float64); ok {
					doc.ConfidenceScore = n
				}
			}
		case docmodel.IsSchemaField(key):
			doc.SetField(key, coerce(key, value))
		default:
			// Unknown top-level keys are still meaningful content.
			if f := coerce(key, value); !f.IsEmpty() {
				doc.ExtraFields[key] = f
			}
		}
	}

	return doc, nil
}

// coerce routes a raw value through the right coercion for its field and
// standardizes date-named string values.
func coerce(fieldName string, raw any) docmodel.FieldValue {
	var f docmodel.FieldValue
	if docmodel.IsListField(fieldName) {
		f = docmodel.CoerceListField(raw, coercionDefault(raw))
	} else {
		f = docmodel.CoerceField(raw, coercionDefault(raw))
	}
	if docmodel.IsDateField(fieldName) {
		if s, ok := f.Value.(string); ok {
			f.Value = docmodel.NormalizeDate(s)
		}
	}
	return f
}

// coercionDefault picks the default confidence: wrapped objects that omit
// confidence default higher than bare values.
func coercionDefault(raw any) float64 {
	if m, ok := raw.(map[string]any); ok {
		if _, hasValue := m["value"]; hasValue {
			return wrappedDefaultConfidence
		}
	}
	return bareDefaultConfidence
}
