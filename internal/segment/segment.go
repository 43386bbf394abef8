// Package segment splits recognized page text into per-document segments.
//
// A single scanned page frequently carries more than one physical document
// (a passport data page photocopied next to a driver's license, say). The
// segmenter decides whether a page holds one document or several, and when
// it holds several, splits the text at document boundaries so each segment
// can be extracted independently.
package segment

import (
	"regexp"
	"strings"

	"github.com/jackzampolin/veridoc/internal/docmodel"
)

// Options controls the heuristics used to detect multi-document pages.
// Zero values are replaced with the defaults below.
type Options struct {
	// SingleMaxChars is the length under which a page is always treated
	// as a single document.
	SingleMaxChars int

	// LongTextChars is the length above which explicit separator lines
	// (rules, "document 2 of 3" markers) are considered.
	LongTextChars int

	// MinSegmentChars is the minimum length for a split segment to be
	// kept; shorter fragments are discarded as noise.
	MinSegmentChars int
}

const (
	defaultSingleMaxChars  = 500
	defaultLongTextChars   = 3000
	defaultMinSegmentChars = 30
)

func (o Options) withDefaults() Options {
	if o.SingleMaxChars <= 0 {
		o.SingleMaxChars = defaultSingleMaxChars
	}
	if o.LongTextChars <= 0 {
		o.LongTextChars = defaultLongTextChars
	}
	if o.MinSegmentChars <= 0 {
		o.MinSegmentChars = defaultMinSegmentChars
	}
	return o
}

// Segmenter detects document boundaries in page text.
type Segmenter struct {
	opts Options
}

// New returns a Segmenter with the given options.
func New(opts Options) *Segmenter {
	return &Segmenter{opts: opts.withDefaults()}
}

// Header patterns that mark the start of a distinct document type. Each
// must match a full trimmed line: prose that merely mentions "contract" or
// "certificate" mid-sentence is not a document header.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*passport\s*$`),
	regexp.MustCompile(`(?i)^\s*driver.*licen[cs]e\s*$`),
	regexp.MustCompile(`(?i)^\s*national.*id\s*$`),
	regexp.MustCompile(`(?i)^\s*voter.*card\s*$`),
	regexp.MustCompile(`(?i)^\s*birth.*certificate\s*$`),
	regexp.MustCompile(`(?i)^\s*land.*use.*agreement\s*$`),
	regexp.MustCompile(`(?i)^\s*contract\s*$`),
	regexp.MustCompile(`(?i)^\s*certificate\s*$`),
}

var (
	docNumberRe = regexp.MustCompile(`(?i)(passport|licen[cs]e|id|certificate)\s+no[:\s]*([a-zA-Z0-9]+)`)
	nameRe      = regexp.MustCompile(`(?i)(surname|name)[:\s]*([a-zA-Z\s]+)`)
	dobRe       = regexp.MustCompile(`(?i)(date\s+of\s+birth|dob)[:\s]*([0-9/\-.]+)`)
)

// Separator patterns only consulted for long pages, where scanners often
// insert rule lines or explicit "document N of M" markers between items.
var separatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-{5,}`),
	regexp.MustCompile(`={5,}`),
	regexp.MustCompile(`(?i)document\s+\d+\s+of\s+\d+`),
	regexp.MustCompile(`(?i)separate\s+document`),
	regexp.MustCompile(`(?i)new\s+document`),
}

// Boundary keywords used when actually splitting: a short line containing
// one of these starts a new segment.
var boundaryKeywords = []string{
	"passport",
	"driver",
	"license",
	"national id",
	"voter registration",
	"birth certificate",
	"work permit",
	"nin",
	"identity card",
	"land use agreement",
	"certificate",
	"permit",
	"visa",
	"travel document",
}

// IsSingleDocument reports whether text appears to contain exactly one
// document. Short pages are always single; longer pages are probed for
// repeated headers, multiple document numbers, multiple identities, and
// (for very long pages) explicit separators.
func (s *Segmenter) IsSingleDocument(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < s.opts.SingleMaxChars {
		return true
	}

	lines := strings.Split(text, "\n")

	headerCount := 0
	headerTypes := make(map[int]bool)
	for _, line := range lines {
		for i, pat := range headerPatterns {
			if pat.MatchString(line) {
				headerCount++
				headerTypes[i] = true
				break
			}
		}
	}
	// Repeated headers of the SAME type are usually artifacts (a passport
	// header printed on both halves of a spread); only distinct types
	// indicate separate documents.
	if headerCount > 2 && len(headerTypes) > 1 {
		return false
	}

	numbers := make(map[string]bool)
	for _, m := range docNumberRe.FindAllStringSubmatch(text, -1) {
		if len(m[2]) > 3 {
			numbers[strings.ToLower(m[2])] = true
		}
	}
	if len(numbers) > 1 {
		return false
	}

	names := make(map[string]bool)
	for _, m := range nameRe.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(strings.TrimSpace(m[2]))
		if len(name) > 3 {
			names[name] = true
		}
	}
	dobs := make(map[string]bool)
	for _, m := range dobRe.FindAllStringSubmatch(text, -1) {
		dob := strings.TrimSpace(m[2])
		if len(dob) > 5 {
			dobs[dob] = true
		}
	}
	if len(names) > 2 && len(dobs) > 1 {
		return false
	}

	if len(trimmed) > s.opts.LongTextChars {
		separators := 0
		for _, pat := range separatorPatterns {
			separators += len(pat.FindAllString(text, -1))
		}
		if separators > 1 {
			return false
		}
	}

	return true
}

// Split divides text into per-document segments, numbered in page order.
// If the page looks like a single document, or splitting yields at most one
// meaningful segment, the whole text is returned as one segment. The caller
// stamps SourcePage; the segmenter only sees text.
func (s *Segmenter) Split(text string) []docmodel.DocumentSegment {
	return asSegments(s.splitTexts(text))
}

func (s *Segmenter) splitTexts(text string) []string {
	if s.IsSingleDocument(text) {
		return []string{text}
	}

	segments := s.splitAtBoundaries(text)

	meaningful := segments[:0]
	for _, seg := range segments {
		if len(strings.TrimSpace(seg)) > s.opts.MinSegmentChars {
			meaningful = append(meaningful, seg)
		}
	}
	if len(meaningful) <= 1 {
		return []string{text}
	}
	return meaningful
}

func asSegments(texts []string) []docmodel.DocumentSegment {
	segs := make([]docmodel.DocumentSegment, len(texts))
	for i, t := range texts {
		segs[i] = docmodel.DocumentSegment{Text: t, Ordinal: i}
	}
	return segs
}

func (s *Segmenter) splitAtBoundaries(text string) []string {
	lines := strings.Split(text, "\n")

	var segments []string
	var buf []string

	flush := func() {
		joined := strings.TrimSpace(strings.Join(buf, "\n"))
		if len(joined) > s.opts.MinSegmentChars {
			segments = append(segments, joined)
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if s.isBoundaryLine(line) && len(strings.TrimSpace(strings.Join(buf, "\n"))) > s.opts.MinSegmentChars {
			flush()
		}
		buf = append(buf, line)
	}
	flush()

	return segments
}

func (s *Segmenter) isBoundaryLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > 100 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range boundaryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return docNumberRe.MatchString(trimmed)
}
