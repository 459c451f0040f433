package parser

import (
	"strings"
	"time"
)

// dateLayouts covers the "Modified" column shapes this core needs to
// recognize: it never needs to preserve the parsed time (spec.md's data
// model has no Modified field on ParsedFile/ParsedDirectory — dates are
// used only as a classification signal), just to tell whether a string is
// a date at all.
var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"02-Jan-2006 15:04",
	"02-Jan-2006 15:04:05",
	"Jan 02 2006 15:04",
	"Monday, January 2, 2006 3:04 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04",
	"02/01/2006 15:04",
	time.RFC1123,
	time.RFC822,
}

// isParseableDate reports whether text parses as any recognized date/time
// shape; used by the heuristic header-column classifier (C3).
func isParseableDate(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, t); err == nil {
			return true
		}
	}
	return false
}
