package docmodel

import "sort"

// OutcomeStatus describes how extraction ended for one segment.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailed  OutcomeStatus = "failed"
)

// ExtractionOutcome is the per-segment result: either a document produced by
// some extraction method, or the error that ended the attempt chain.
type ExtractionOutcome struct {
	Status   OutcomeStatus      `json:"status"`
	Segment  int                `json:"segment"`
	Method   string             `json:"method,omitempty"`
	Document *ExtractedDocument `json:"document,omitempty"`
	Error    string             `json:"error,omitempty"`

	// Raw holds the unverified, unfiltered candidate when the caller asked
	// for diagnostic output. Nil by default.
	Raw *ExtractedDocument `json:"raw_candidate,omitempty"`
}

// ResultMetadata summarizes a full extraction run.
type ResultMetadata struct {
	TotalSegments int      `json:"total_segments"`
	SuccessCount  int      `json:"success_count"`
	FailureCount  int      `json:"failure_count"`
	MethodsUsed   []string `json:"methods_used"`
	ElapsedMs     int64    `json:"elapsed_ms"`
}

// ExtractionResult is the top-level response for one processed page.
type ExtractionResult struct {
	Outcomes []ExtractionOutcome `json:"outcomes"`
	Metadata ResultMetadata      `json:"metadata"`
}

// Summarize fills in Metadata from the recorded outcomes.
func (r *ExtractionResult) Summarize(elapsedMs int64) {
	r.Metadata = ResultMetadata{
		TotalSegments: len(r.Outcomes),
		ElapsedMs:     elapsedMs,
	}
	seen := make(map[string]struct{})
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSuccess:
			r.Metadata.SuccessCount++
		case StatusFailed:
			r.Metadata.FailureCount++
		}
		if o.Method != "" {
			seen[o.Method] = struct{}{}
		}
	}
	for m := range seen {
		r.Metadata.MethodsUsed = append(r.Metadata.MethodsUsed, m)
	}
	sort.Strings(r.Metadata.MethodsUsed)
}
