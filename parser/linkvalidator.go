package parser

import (
	"regexp"
	"strings"
)

// sortLinkPattern matches the classic Apache column/order sort query,
// spec.md §4.2: "?[NMSD]=?[AD]" (the second segment's leading "?" is
// literal-question-mark-optional in the source grammar, e.g. "?N=A",
// "?M=D").
var sortLinkPattern = regexp.MustCompile(`\?[NMSD]=\??[AD]\b`)

var rejectedHrefs = map[string]bool{
	"": true, "/": true, "..": true, "../": true, "./.": true, "./..": true, "#": true,
}

var rejectedTexts = map[string]bool{
	"..": true, ".": true, "name": true, "parent directory": true, "[to parent directory]": true,
}

// IsValidLink implements the link validator (C2): it rejects decorative,
// parent-directory, sort, mailto and javascript anchors and accepts
// everything else.
func IsValidLink(href, text, title string) bool {
	if rejectedHrefs[href] {
		return false
	}
	lowerHref := strings.ToLower(strings.TrimSpace(href))
	if strings.HasPrefix(lowerHref, "javascript:") || strings.HasPrefix(lowerHref, "mailto:") {
		return false
	}

	trimmedText := strings.TrimSpace(text)
	if rejectedTexts[strings.ToLower(trimmedText)] {
		return false
	}

	if strings.TrimSpace(title) == ".." {
		return false
	}

	if strings.Contains(href, "&expand") {
		return false
	}

	isDirectoryListAsp := strings.HasSuffix(lastSegment(href), strings.ToLower("directorylist.asp"))
	if sortLinkPattern.MatchString(href) && !isDirectoryListAsp {
		return false
	}

	if isDirectoryListAsp && trimmedText == "" {
		return false
	}

	return true
}

func lastSegment(href string) string {
	h := href
	if idx := strings.IndexAny(h, "?#"); idx >= 0 {
		h = h[:idx]
	}
	if idx := strings.LastIndex(h, "/"); idx >= 0 {
		h = h[idx+1:]
	}
	return strings.ToLower(h)
}

// isParentOrIconRow reports whether a row's visible text, once trimmed,
// reads as a parent-directory link — used by the table and preformatted
// extractors to skip the "Parent Directory" row some servers emit as a
// plain row rather than an <a> with rejected text.
func isParentOrIconRow(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "parent directory" || t == ".." || t == "[to parent directory]"
}
