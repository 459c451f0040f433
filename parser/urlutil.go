package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// defaultFilenames lists the index filenames two otherwise-identical URLs
// may differ by; extending this list is a policy choice (spec.md §9 open
// question b), not a bug, so it stays fixed at exactly what spec.md names.
var defaultFilenames = []string{"index.php", "index.shtml", "DirectoryList.asp"}

// ReplaceCommonDefaultFilenames erases a trailing default index filename
// from a URL path so that "/a/index.php" and "/a/" compare equal.
func ReplaceCommonDefaultFilenames(path string) string {
	for _, name := range defaultFilenames {
		if strings.HasSuffix(path, "/"+name) {
			return strings.TrimSuffix(path, name)
		}
		if strings.EqualFold(path, name) {
			return ""
		}
	}
	return path
}

// Resolve resolves href against base, accepting relative, absolute,
// scheme-less, and query-only hrefs.
func Resolve(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// StripUrl removes the classic Apache sort query (exactly the two
// parameters C and O) from u, leaving everything else unchanged. It is
// idempotent: stripping an already-stripped URL is a no-op.
func StripUrl(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if len(q) == 2 {
		if _, hasC := q["C"]; hasC {
			if _, hasO := q["O"]; hasO {
				u.RawQuery = ""
				return u.String()
			}
		}
	}
	return raw
}

// sizeUnits maps a case-insensitive size suffix to its byte multiplier.
var sizeUnits = []struct {
	suffixes []string
	mult     float64
}{
	{[]string{"tib", "tb", "t"}, 1 << 40},
	{[]string{"gib", "gb", "g"}, 1 << 30},
	{[]string{"mib", "mb", "m"}, 1 << 20},
	{[]string{"kib", "kb", "k"}, 1 << 10},
	{[]string{"b", "byte", "bytes"}, 1},
}

var sizeNumberPattern = regexp.MustCompile(`^[\d.,\s]+`)

// nonSizeTexts are strings ParseFileSize must never interpret as a size.
var nonSizeTexts = map[string]bool{
	"-": true, "—": true, "–": true, "<directory>": true,
}

// ParseFileSize parses a human-readable file size ("1.2 GB", "3kB", "42",
// with localized thousands/decimal separators) into a non-negative byte
// count, or reports ok=false when text is not a size at all (the "unknown"
// sentinel case). Negative raw values (4-GiB wrap artifacts seen on some
// servers) collapse to unknown rather than a negative size.
//
// onlyChecking does not change the result: non-size input yields
// (UnknownSize, false) in both modes. Callers doing heuristic header-column
// detection (C3) pass true.
func ParseFileSize(text string, onlyChecking bool) (int64, bool) {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)

	if nonSizeTexts[lower] || t == "" {
		return UnknownSize, false
	}
	if lower == "0.00b" || lower == "0.00 b" {
		return UnknownSize, false
	}
	if strings.Contains(lower, "<dir") || lower == "dir" {
		return UnknownSize, false
	}

	numMatch := sizeNumberPattern.FindString(t)
	if numMatch == "" {
		return UnknownSize, false
	}
	numPart := strings.TrimSpace(numMatch)
	rest := strings.TrimSpace(strings.ToLower(t[len(numMatch):]))

	numPart = normalizeNumber(numPart)
	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		if onlyChecking {
			return UnknownSize, false
		}
		return UnknownSize, false
	}

	mult := 1.0
	matchedUnit := rest == ""
	for _, u := range sizeUnits {
		for _, suf := range u.suffixes {
			if rest == suf {
				mult = u.mult
				matchedUnit = true
			}
		}
	}
	if !matchedUnit && rest != "" {
		// Unrecognized trailing text: not a size we understand.
		return UnknownSize, false
	}

	bytes := int64(value * mult)
	if bytes < 0 {
		// 4 GiB wrap artifact on some servers: unknown, not negative.
		return UnknownSize, false
	}
	return bytes, true
}

// normalizeNumber converts a localized numeric string into one
// strconv.ParseFloat accepts: when both '.' and ',' appear, whichever comes
// last is the decimal point and the other is the thousands separator; a
// lone ',' is treated as the decimal point.
func normalizeNumber(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// "1.234,56" style: dot is thousands, comma is decimal.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// "1,234.56" style: comma is thousands.
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// Ambiguous single separator: treat as decimal point.
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}
