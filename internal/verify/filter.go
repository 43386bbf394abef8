package verify

import "github.com/jackzampolin/veridoc/internal/docmodel"

// Method-specific confidence thresholds. Vision output is held to a
// stricter bar than text output.
const (
	TextConfidenceThreshold   = 0.65
	VisionConfidenceThreshold = 0.70
)

// FilterByConfidence removes every field whose confidence falls below
// threshold, walking nested maps and lists recursively. The document type
// and extraction method are kept unconditionally. Containers emptied by
// filtering are pruned rather than kept as empty shells.
func FilterByConfidence(doc *docmodel.ExtractedDocument, threshold float64) {
	if doc == nil {
		return
	}

	for name, f := range doc.Fields {
		kept, ok := filterValue(f, threshold)
		if !ok {
			delete(doc.Fields, name)
			continue
		}
		doc.Fields[name] = kept
	}
	for name, f := range doc.ExtraFields {
		kept, ok := filterValue(f, threshold)
		if !ok {
			delete(doc.ExtraFields, name)
			continue
		}
		doc.ExtraFields[name] = kept
	}
}

// filterValue reports whether f survives the threshold, returning the
// field with any nested content below the threshold removed.
func filterValue(f docmodel.FieldValue, threshold float64) (docmodel.FieldValue, bool) {
	if f.Confidence < threshold {
		return f, false
	}

	switch v := f.Value.(type) {
	case []docmodel.FieldValue:
		kept := make([]docmodel.FieldValue, 0, len(v))
		for _, item := range v {
			if filtered, ok := filterValue(item, threshold); ok {
				kept = append(kept, filtered)
			}
		}
		if len(kept) == 0 {
			return f, false
		}
		f.Value = kept
	case map[string]docmodel.FieldValue:
		kept := make(map[string]docmodel.FieldValue, len(v))
		for name, item := range v {
			if filtered, ok := filterValue(item, threshold); ok {
				kept[name] = filtered
			}
		}
		if len(kept) == 0 {
			return f, false
		}
		f.Value = kept
	}

	return f, !f.IsEmpty()
}
