package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// preLineSplitter splits a <pre> block's inner HTML into lines on the
// delimiters spec.md §4.5 names: CRLF/CR/LF, <br> (any attributes/void
// form), or <hr>.
var preLineSplitter = regexp.MustCompile(`(?i)\r\n|\r|\n|<br\s*/?>|<hr\s*/?>`)

// preRegex is one entry of the ordered, fixed regex family R1-R8. Compiled
// once; tried per line in order until one matches — never fused, per
// spec.md §9 design notes.
type preRegex struct {
	name    string
	pattern *regexp.Regexp
	// classify decides directory-vs-file and the effective size from the
	// regex's named capture groups, per the "Size cue" column of spec.md §4.5.
	classify func(groups map[string]string) (isDir bool, size int64, sizeKnown bool)
}

func namedGroups(re *regexp.Regexp, m []string) map[string]string {
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" || i >= len(m) {
			continue
		}
		out[name] = m[i]
	}
	return out
}

var preRegexFamily = []preRegex{
	{
		// R1: Apache-classic "<img> <a> modified size description".
		name:    "R1",
		pattern: regexp.MustCompile(`(?i)<img[^>]*alt="(?P<marker>\[[^\]]*\]|DIR)"[^>]*>\s*<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>\s*(?P<modified>\d{2}-\w{3}-\d{4}\s+\d{2}:\d{2})?\s*(?P<size>[\d.,]+\s*[A-Za-z]*|-)?\s*(?P<desc>.*)$`),
		classify: func(g map[string]string) (bool, int64, bool) {
			if strings.Contains(strings.ToUpper(g["marker"]), "DIR") {
				return true, UnknownSize, false
			}
			size, ok := ParseFileSize(g["size"], false)
			return false, size, ok
		},
	},
	{
		// R2: compact "<a> datetime size".
		name:    "R2",
		pattern: regexp.MustCompile(`(?i)<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>\s+(?P<modified>\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(?::\d{2})?)\s+(?P<size>[\d.,]+\s*[A-Za-z]*)\s*$`),
		classify: func(g map[string]string) (bool, int64, bool) {
			size, ok := ParseFileSize(g["size"], false)
			return false, size, ok
		},
	},
	{
		// R3: "date <img?> size <a>".
		name:    "R3",
		pattern: regexp.MustCompile(`(?i)^(?P<modified>\d{2}-\w{3}-\d{4}\s+\d{2}:\d{2})\s*(?:<img[^>]*alt="(?P<marker>\[[^\]]*\]|DIR)"[^>]*>)?\s*(?P<size>[\d.,]+\s*[A-Za-z]*|<dir>|DIR)\s*<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>`),
		classify: func(g map[string]string) (bool, int64, bool) {
			if isDirMarker(g["size"]) || strings.Contains(strings.ToUpper(g["marker"]), "DIR") {
				return true, UnknownSize, false
			}
			size, ok := ParseFileSize(g["size"], false)
			return false, size, ok
		},
	},
	{
		// R4: IIS-like "Weekday, Month d, yyyy h:mm AP size <a>".
		name:    "R4",
		pattern: regexp.MustCompile(`(?i)^(?P<modified>\w+,\s+\w+\s+\d{1,2},\s+\d{4}\s+\d{1,2}:\d{2}\s*[AP]M)\s+(?P<size>[\d.,]+|<dir>|DIR)\s*<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>`),
		classify: classifyDirMarkerOrSize,
	},
	{
		// R5: Korean IIS "date 오전/오후 size <a>".
		name:    "R5",
		pattern: regexp.MustCompile(`(?i)^(?P<modified>\d{4}-\d{2}-\d{2}\s+(?:오전|오후)\s+\d{1,2}:\d{2})\s+(?P<size>[\d.,]+|<dir>|DIR)\s*<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>`),
		classify: classifyDirMarkerOrSize,
	},
	{
		// R6: "m/d/yyyy h:mm AM size <a>".
		name:    "R6",
		pattern: regexp.MustCompile(`(?i)^(?P<modified>\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}\s*[AP]M)\s+(?P<size>[\d.,]+|<dir>|DIR)\s*<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>`),
		classify: classifyDirMarkerOrSize,
	},
	{
		// R7: Unix "ls -l" style "drwx... size date <a>".
		name:    "R7",
		pattern: regexp.MustCompile(`(?i)^(?P<mode>[dl\-][rwxstST\-]{9})\s+\d+\s+\S+\s+\S+\s+(?P<size>-?\d+)\s+(?P<modified>\w+\s+\d+\s+[\d:]+)\s*<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>`),
		classify: func(g map[string]string) (bool, int64, bool) {
			isDir := strings.HasPrefix(g["mode"], "d")
			size, ok := ParseFileSize(g["size"], false)
			if ok && size < 0 {
				ok = false
			}
			return isDir, size, ok
		},
	},
	{
		// R8: "<a> [/]?size?" fallback.
		name:    "R8",
		pattern: regexp.MustCompile(`(?i)<a\s+[^>]*href="(?P<href>[^"]+)"[^>]*>(?P<text>[^<]*)</a>\s*(?P<size>/|[\d.,]+\s*[A-Za-z]*|-)?\s*$`),
		classify: func(g map[string]string) (bool, int64, bool) {
			size := strings.TrimSpace(g["size"])
			if size == "/" || strings.HasSuffix(strings.TrimSpace(g["href"]), "/") {
				return true, UnknownSize, false
			}
			if size == "-" || size == "" {
				return false, UnknownSize, false
			}
			s, ok := ParseFileSize(size, false)
			return false, s, ok
		},
	},
}

func classifyDirMarkerOrSize(g map[string]string) (bool, int64, bool) {
	if isDirMarker(g["size"]) {
		return true, UnknownSize, false
	}
	size, ok := ParseFileSize(g["size"], false)
	return false, size, ok
}

func isDirMarker(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "<dir>") || strings.EqualFold(strings.TrimSpace(s), "DIR")
}

var tagStripPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagStripPattern.ReplaceAllString(s, ""))
}

// dispatchPreFormatted implements the preformatted-text extractor (C4 /
// spec §4.5): every <pre> block on the page, split into lines, each line
// run through R1-R8 in fixed order.
func dispatchPreFormatted(doc *goquery.Document, shell *ParsedDirectory, base *url.URL, family []preRegex) (*ParsedDirectory, bool) {
	pres := doc.Find("pre")
	if pres.Length() == 0 {
		return nil, false
	}

	dir := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectPreFormatted}
	matchedAny := false

	pres.Each(func(_ int, pre *goquery.Selection) {
		html, err := pre.Html()
		if err != nil {
			return
		}
		for _, line := range preLineSplitter.Split(html, -1) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if addPreLine(line, dir, base, family) {
				matchedAny = true
			}
		}
	})

	if !matchedAny {
		return nil, false
	}
	return dir, true
}

func addPreLine(line string, dir *ParsedDirectory, base *url.URL, family []preRegex) bool {
	for _, pr := range family {
		m := pr.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		g := namedGroups(pr.pattern, m)
		href := g["href"]
		text := stripTags(g["text"])
		title := "" // preformatted anchors rarely carry a title attribute
		if href == "" || !IsValidLink(href, text, title) {
			return false
		}
		if isParentOrIconRow(text) {
			return false
		}

		resolved, err := Resolve(base, href)
		if err != nil {
			return false
		}
		resolved.Fragment = ""

		isDir, size, _ := pr.classify(g)
		name := text
		if isDir {
			name = strings.TrimSuffix(name, "/")
		}
		if name == "" {
			name = decodedLastSegment(resolved)
		}

		if isDir {
			dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
		} else {
			dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: size, Description: stripTags(g["desc"])})
		}
		return true
	}
	return false
}
