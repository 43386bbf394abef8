package docmodel

import (
	"regexp"
	"strings"
	"time"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateLayouts are the formats we attempt, in order, when normalizing a date
// string to ISO 8601. Day-first layouts come before month-first since most
// source documents use day-first dates.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"02.01.2006",
	"2006/01/02",
}

// NormalizeDate converts a recognizable date string to YYYY-MM-DD. Values
// that do not parse under any known layout are returned unchanged.
func NormalizeDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || isoDateRe.MatchString(trimmed) {
		return trimmed
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return trimmed
}

var dateFieldRe = regexp.MustCompile(`(?i)date|expiry|expiration|issue|birth`)

// IsDateField reports whether a field name suggests a date value.
func IsDateField(name string) bool {
	return dateFieldRe.MatchString(name)
}
