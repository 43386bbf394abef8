// Package api shapes pipeline results for API and CLI consumers and handles
// output formatting. Categorization happens here, at the presentation edge:
// the stored document keeps its flat field maps, while every consumer sees
// the fields grouped into semantic buckets with primaries and related pairs.
package api

import (
	"sort"

	"github.com/jackzampolin/veridoc/internal/categorize"
	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// DocumentView is one segment's outcome shaped for consumers.
type DocumentView struct {
	Status   docmodel.OutcomeStatus      `json:"status"`
	Segment  int                         `json:"segment"`
	Method   string                      `json:"method,omitempty"`
	Document *docmodel.ExtractedDocument `json:"document,omitempty"`
	Error    string                      `json:"error,omitempty"`

	CategorizedFields map[string]map[string]docmodel.FieldValue `json:"categorized_fields,omitempty"`
	PrimaryFields     map[string]docmodel.FieldValue            `json:"primary_fields,omitempty"`
	RelatedFields     []categorize.Relationship                 `json:"related_fields,omitempty"`

	RawCandidate *docmodel.ExtractedDocument `json:"raw_candidate,omitempty"`
}

// ExtractionResponse is the full structured response for one page.
type ExtractionResponse struct {
	Documents []DocumentView          `json:"documents"`
	Metadata  docmodel.ResultMetadata `json:"metadata"`
}

// BuildExtractionResponse shapes a pipeline result. Raw candidates are only
// surfaced when the caller asked for them.
func BuildExtractionResponse(result *docmodel.ExtractionResult, includeRaw bool) *ExtractionResponse {
	resp := &ExtractionResponse{
		Documents: make([]DocumentView, 0, len(result.Outcomes)),
		Metadata:  result.Metadata,
	}
	for _, out := range result.Outcomes {
		view := DocumentView{
			Status:   out.Status,
			Segment:  out.Segment,
			Method:   out.Method,
			Document: out.Document,
			Error:    out.Error,
		}
		if includeRaw {
			view.RawCandidate = out.Raw
		}
		if out.Document != nil {
			all := mergedFields(out.Document)
			if len(all) > 0 {
				view.CategorizedFields = categorize.Categorize(all)
				view.PrimaryFields = categorize.PrimaryFields(view.CategorizedFields)
				view.RelatedFields = categorize.RelatedFields(fieldNames(all))
			}
		}
		resp.Documents = append(resp.Documents, view)
	}
	return resp
}

// mergedFields flattens a document's schema and extra fields into one map.
// Schema fields win on a name collision.
func mergedFields(doc *docmodel.ExtractedDocument) map[string]docmodel.FieldValue {
	all := make(map[string]docmodel.FieldValue, len(doc.Fields)+len(doc.ExtraFields))
	for name, f := range doc.Fields {
		all[name] = f
	}
	for name, f := range doc.ExtraFields {
		if _, taken := all[name]; !taken {
			all[name] = f
		}
	}
	return all
}

func fieldNames(fields map[string]docmodel.FieldValue) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
