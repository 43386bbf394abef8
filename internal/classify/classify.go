// Package classify assigns a document type to recognized text before
// extraction, so the extraction prompt can be tuned to the document at hand.
//
// Classification is archetype-driven: each known document type carries the
// patterns that identify it, the terms that must be present, and optional
// terms that raise confidence. Unknown documents fall through to broad
// generic buckets.
package classify

import (
	"regexp"
	"strings"
)

// Result is a classification outcome. Analysis records the score of every
// archetype that matched, so callers can see what the verdict beat.
type Result struct {
	Type       string             `json:"document_type"`
	Confidence float64            `json:"confidence"`
	Analysis   map[string]float64 `json:"analysis,omitempty"`
}

// UnknownType is returned when no archetype or generic bucket matches.
const UnknownType = "unknown_document"

type archetype struct {
	docType  string
	weight   float64
	patterns []*regexp.Regexp
	required []string
	optional []string

	optionalRe []*regexp.Regexp
}

func init() {
	for i := range archetypes {
		for _, opt := range archetypes[i].optional {
			archetypes[i].optionalRe = append(archetypes[i].optionalRe, regexp.MustCompile(opt))
		}
	}
}

// requiredAlternatives: a required term of the form "a|b" is satisfied by
// either word.
func requiredMet(term, text string) bool {
	for _, alt := range strings.Split(term, "|") {
		if strings.Contains(text, alt) {
			return true
		}
	}
	return false
}

var archetypes = []archetype{
	{
		docType: "international_passport",
		weight:  0.95,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`passport`),
			regexp.MustCompile(`international.*passport`),
			regexp.MustCompile(`p<[a-z]{3}`),
		},
		required: []string{"passport"},
		optional: []string{"nationality", "document.*number", "date.*birth"},
	},
	{
		docType: "national_id_card",
		weight:  0.90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`national.*id`),
			regexp.MustCompile(`identity.*card`),
			regexp.MustCompile(`nin`),
		},
		required: []string{"national", "id"},
		optional: []string{"identification", "card"},
	},
	{
		docType: "drivers_license",
		weight:  0.90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`driver.*licen[cs]e`),
			regexp.MustCompile(`driving.*licen[cs]e`),
		},
		required: []string{"license"},
		optional: []string{"driver", "class", "vehicle"},
	},
	{
		docType: "voter_registration_card",
		weight:  0.90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`voter`),
			regexp.MustCompile(`voting`),
			regexp.MustCompile(`registration.*card`),
		},
		required: []string{"voter"},
		optional: []string{"registration", "polling", "district"},
	},
	{
		docType: "land_use_restriction_agreement",
		weight:  0.95,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`land.*use.*restriction`),
			regexp.MustCompile(`restriction.*agreement`),
		},
		required: []string{"land", "restriction"},
		optional: []string{"agreement", "grantor", "grantee"},
	},
	{
		docType: "contract",
		weight:  0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`contract`),
			regexp.MustCompile(`agreement`),
			regexp.MustCompile(`terms.*conditions`),
		},
		required: []string{"contract|agreement"},
		optional: []string{"party", "parties", "effective.*date"},
	},
	{
		docType: "lease_agreement",
		weight:  0.90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`lease`),
			regexp.MustCompile(`rental.*agreement`),
			regexp.MustCompile(`tenancy`),
		},
		required: []string{"lease"},
		optional: []string{"landlord", "tenant", "rent"},
	},
	{
		docType: "birth_certificate",
		weight:  0.95,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`birth.*certificate`),
			regexp.MustCompile(`certificate.*birth`),
		},
		required: []string{"birth", "certificate"},
		optional: []string{"born", "registration"},
	},
	{
		docType: "marriage_certificate",
		weight:  0.95,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`marriage.*certificate`),
			regexp.MustCompile(`certificate.*marriage`),
		},
		required: []string{"marriage", "certificate"},
		optional: []string{"spouse", "married", "wedding"},
	},
	{
		docType: "academic_certificate",
		weight:  0.90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`degree`),
			regexp.MustCompile(`diploma`),
			regexp.MustCompile(`academic.*certificate`),
		},
		required: []string{"certificate"},
		optional: []string{"university", "college", "graduation"},
	},
	{
		docType: "invoice",
		weight:  0.90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`invoice`),
			regexp.MustCompile(`bill.*to`),
		},
		required: []string{"invoice"},
		optional: []string{"amount", "total", "due"},
	},
	{
		docType: "receipt",
		weight:  0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`receipt`),
			regexp.MustCompile(`payment.*received`),
		},
		required: []string{"receipt"},
		optional: []string{"paid", "amount", "total"},
	},
	{
		docType: "medical_certificate",
		weight:  0.90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`medical`),
			regexp.MustCompile(`health.*certificate`),
		},
		required: []string{"medical"},
		optional: []string{"doctor", "patient", "diagnosis"},
	},
	{
		docType: "permit",
		weight:  0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`permit`),
			regexp.MustCompile(`authorization`),
		},
		required: []string{"permit"},
		optional: []string{"work", "residence", "valid"},
	},
}

type genericBucket struct {
	docType string
	terms   []string
}

var genericBuckets = []genericBucket{
	{"legal_agreement", []string{"agreement", "contract"}},
	{"certificate", []string{"certificate"}},
	{"financial_document", []string{"invoice", "bill", "payment"}},
	{"report", []string{"report", "summary", "analysis"}},
	{"letter", []string{"letter", "correspondence"}},
	{"form", []string{"form", "application"}},
}

// Classify scores the text against every archetype and returns the best
// match. Empty text yields UnknownType at 0.5.
func Classify(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Result{Type: UnknownType, Confidence: 0.5}
	}

	analysis := make(map[string]float64)
	best := Result{}
	for _, a := range archetypes {
		score := a.score(lower)
		if score <= 0 {
			continue
		}
		analysis[a.docType] = score
		if score > best.Confidence {
			best = Result{Type: a.docType, Confidence: score}
		}
	}
	if best.Type != "" {
		best.Analysis = analysis
		return best
	}

	for _, b := range genericBuckets {
		for _, term := range b.terms {
			if strings.Contains(lower, term) {
				return Result{Type: b.docType, Confidence: 0.7, Analysis: map[string]float64{b.docType: 0.7}}
			}
		}
	}

	return Result{Type: UnknownType, Confidence: 0.5}
}

// score returns 0 when any required term is missing; otherwise a base of
// 0.6 plus pattern and optional-term bonuses, scaled by the archetype
// weight and capped at 1.0.
func (a archetype) score(lower string) float64 {
	for _, req := range a.required {
		if !requiredMet(req, lower) {
			return 0
		}
	}

	patternHits := 0
	for _, pat := range a.patterns {
		if pat.MatchString(lower) {
			patternHits++
		}
	}

	optionalHits := 0
	for _, opt := range a.optionalRe {
		if opt.MatchString(lower) {
			optionalHits++
		}
	}

	score := 0.6
	if len(a.patterns) > 0 {
		score += 0.3 * float64(patternHits) / float64(len(a.patterns))
	}
	if len(a.optional) > 0 {
		score += 0.1 * float64(optionalHits) / float64(len(a.optional))
	}
	score *= a.weight
	if score > 1.0 {
		score = 1.0
	}
	return score
}
