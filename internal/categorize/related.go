package categorize

import (
	"regexp"
	"sort"
	"strings"
)

// Relationship is a scored pairing of two field names.
type Relationship struct {
	Field1 string  `json:"field_1"`
	Field2 string  `json:"field_2"`
	Score  float64 `json:"score"`
}

type relationRule struct {
	a, b  *regexp.Regexp
	score float64
}

var relationRules = []relationRule{
	// Name components
	{regexp.MustCompile(`(?i)first_name`), regexp.MustCompile(`(?i)last_name`), 0.9},
	{regexp.MustCompile(`(?i)first_name`), regexp.MustCompile(`(?i)middle_name`), 0.8},
	{regexp.MustCompile(`(?i)middle_name`), regexp.MustCompile(`(?i)last_name`), 0.8},
	{regexp.MustCompile(`(?i)surname`), regexp.MustCompile(`(?i)given_names`), 0.9},
	// Address components
	{regexp.MustCompile(`(?i)address`), regexp.MustCompile(`(?i)city`), 0.9},
	{regexp.MustCompile(`(?i)city`), regexp.MustCompile(`(?i)state`), 0.9},
	{regexp.MustCompile(`(?i)state`), regexp.MustCompile(`(?i)zip_code`), 0.9},
	{regexp.MustCompile(`(?i)country`), regexp.MustCompile(`(?i)(city|state|zip)`), 0.8},
	// Dates
	{regexp.MustCompile(`(?i)issue_date`), regexp.MustCompile(`(?i)expiration_date`), 0.9},
	{regexp.MustCompile(`(?i)date_of_issue`), regexp.MustCompile(`(?i)date_of_expiry`), 0.9},
	{regexp.MustCompile(`(?i)start_date`), regexp.MustCompile(`(?i)end_date`), 0.9},
	{regexp.MustCompile(`(?i)effective_date`), regexp.MustCompile(`(?i)term_date`), 0.8},
	// Counterparties
	{regexp.MustCompile(`(?i)grantor`), regexp.MustCompile(`(?i)grantee`), 0.9},
	{regexp.MustCompile(`(?i)buyer`), regexp.MustCompile(`(?i)seller`), 0.9},
	{regexp.MustCompile(`(?i)landlord`), regexp.MustCompile(`(?i)tenant`), 0.9},
	{regexp.MustCompile(`(?i)lender`), regexp.MustCompile(`(?i)borrower`), 0.9},
}

// Same-prefix pairings (grantor_name/grantor_address) score below the
// rule table; relationships below this score are dropped.
const (
	prefixRelationScore = 0.7
	relationCutoff      = 0.7
)

// RelatedFields finds likely-related field name pairs, strongest first.
// Rules pair known counterparts; names sharing a common prefix are paired
// heuristically.
func RelatedFields(fieldNames []string) []Relationship {
	names := append([]string(nil), fieldNames...)
	sort.Strings(names)

	var out []Relationship
	for i, f1 := range names {
		for _, f2 := range names[i+1:] {
			score := relationScore(f1, f2)
			if score >= relationCutoff {
				out = append(out, Relationship{Field1: f1, Field2: f2, Score: score})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func relationScore(f1, f2 string) float64 {
	for _, rule := range relationRules {
		if (rule.a.MatchString(f1) && rule.b.MatchString(f2)) ||
			(rule.b.MatchString(f1) && rule.a.MatchString(f2)) {
			return rule.score
		}
	}

	p1, ok1 := prefixOf(f1)
	p2, ok2 := prefixOf(f2)
	if ok1 && ok2 && p1 == p2 {
		return prefixRelationScore
	}
	return 0
}

func prefixOf(name string) (string, bool) {
	i := strings.Index(name, "_")
	if i <= 2 {
		return "", false
	}
	return name[:i], true
}
