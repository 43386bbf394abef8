package enrich

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Value patterns that mark an extra-field value as carrying real data.
var (
	dateValueRe    = regexp.MustCompile(`(?i)\b(?:\d{1,2}[/\-. ]\d{1,2}[/\-. ]\d{2,4}|\d{4}-\d{2}-\d{2}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*)\b`)
	amountValueRe  = regexp.MustCompile(`(?i)(\$\s?\d[\d,]*(?:\.\d+)?|€\s?\d[\d,]*(?:\.\d+)?|£\s?\d[\d,]*(?:\.\d+)?|\d[\d,]*\s?(USD|NGN|EUR|GBP))`)
	numericIDRe    = regexp.MustCompile(`\b\d{6,14}\b`)
	mrzValueRe     = regexp.MustCompile(`P<[A-Z0-9<]{10,}|\b[A-Z0-9<]{20,}\b`)
	addressHintRe  = regexp.MustCompile(`(?i)\b(street|st|road|rd|ave|avenue|blvd|lane|ln|drive|dr|court|ct|way|suite|ste|city|province|state|county|district)\b`)
	upperNameRe    = regexp.MustCompile(`^[A-Z][A-Z\s\-]{2,}$`)
	bracketNameRe  = regexp.MustCompile(`\[([A-Z][A-Z\s\-.]{2,})\]`)
	capitalPairRe  = regexp.MustCompile(`([A-Z][a-zA-Z]+\s+[A-Z][a-zA-Z]+)`)
	fieldKeySlugRe = regexp.MustCompile(`[^a-zA-Z0-9_ ]`)
)

// Roles recognized when mining party names out of legal boilerplate.
var roleKeywords = []string{
	"grantor", "grantee", "owner", "lessee", "landlord",
	"applicant", "tenant", "seller", "buyer",
}

const englishLikeRatio = 0.35

// Per-role patterns for the `NAME (the "Grantor")` style, precompiled.
var roleNameBefore = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(roleKeywords))
	for _, kw := range roleKeywords {
		m[kw] = regexp.MustCompile(`([A-Z][A-Z\s\-.]{2,})[,;)]?\s*\(.*?(?i:\b` + kw + `\b)`)
	}
	return m
}()

// CleanExtraFields rewrites a document's extra fields in place: values that
// name a legal role yield a consolidated <role>_name field, meaningless
// values are dropped, and surviving keys are slugged with duplicate keys
// suffixed.
func CleanExtraFields(doc *docmodel.ExtractedDocument) {
	if doc == nil || len(doc.ExtraFields) == 0 {
		return
	}

	cleaned := make(map[string]docmodel.FieldValue, len(doc.ExtraFields))
	type roleEntry struct {
		name string
		conf float64
	}
	roles := make(map[string]roleEntry)

	for rawKey, f := range doc.ExtraFields {
		value, ok := f.Value.(string)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}

		if role, name := extractRoleName(value); role != "" {
			key := role + "_name"
			if existing, ok := roles[key]; !ok || f.Confidence > existing.conf {
				roles[key] = roleEntry{name: name, conf: f.Confidence}
			}
			continue
		}

		if !MeaningfulValue(value) {
			continue
		}

		key := slugFieldKey(rawKey)
		if _, taken := cleaned[key]; taken {
			key += "_1"
		}
		cleaned[key] = docmodel.NewField(strings.TrimSpace(value), f.Confidence)
	}

	for key, entry := range roles {
		cleaned[key] = docmodel.NewField(strings.TrimSpace(entry.name), entry.conf)
	}

	doc.ExtraFields = cleaned
}

// extractRoleName finds a party name attached to a legal role keyword,
// e.g. `[ACME HOLDINGS] (the "Grantor")`.
func extractRoleName(s string) (role, name string) {
	clean := strings.NewReplacer("\u201c", `"`, "\u201d", `"`).Replace(s)
	lower := strings.ToLower(clean)
	for _, kw := range roleKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		if m := bracketNameRe.FindStringSubmatch(clean); m != nil {
			return kw, strings.TrimSpace(m[1])
		}
		// NAME (the "Grantor") style, with the name preceding the role.
		if m := roleNameBefore[kw].FindStringSubmatch(clean); m != nil {
			return kw, strings.TrimSpace(m[1])
		}
		if m := capitalPairRe.FindStringSubmatch(clean); m != nil {
			return kw, strings.TrimSpace(m[1])
		}
	}
	return "", ""
}

// MeaningfulValue reports whether a mined value carries data worth
// keeping: dates, amounts, identifiers, MRZ fragments, address hints,
// uppercase name blocks, or short english-like phrases.
func MeaningfulValue(value string) bool {
	v := strings.TrimSpace(value)
	if len(v) < 3 {
		return false
	}
	if dateValueRe.MatchString(v) || amountValueRe.MatchString(v) ||
		numericIDRe.MatchString(v) || mrzValueRe.MatchString(v) {
		return true
	}
	if addressHintRe.MatchString(v) {
		return true
	}
	if upperNameRe.MatchString(v) {
		return true
	}
	if !englishLike(v) {
		return false
	}
	words := strings.Fields(v)
	if strings.ContainsFunc(v, unicode.IsDigit) || (len(words) > 1 && len(words) <= 6) {
		return true
	}
	return false
}

func englishLike(s string) bool {
	if s == "" {
		return false
	}
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return float64(letters)/float64(len([]rune(s))) >= englishLikeRatio
}

func slugFieldKey(key string) string {
	slug := fieldKeySlugRe.ReplaceAllString(key, "")
	slug = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(slug)), " ", "_")
	if slug == "" {
		return key
	}
	return slug
}
