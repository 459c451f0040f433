package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// simpleExtractor is one entry of the ordered structural-probe cascade
// (spec.md §4.4/§9): a CSS selector that must find at least one row, and a
// row-level function that turns a matched row into an entry. The dispatcher
// tries each in order and stops at the first that yields any entries.
type simpleExtractor struct {
	dialect  Dialect
	selector string
	row      func(row *goquery.Selection, dir *ParsedDirectory, base *url.URL) bool
}

var simpleExtractors = []simpleExtractor{
	{dialect: DialectDirectoryListing, selector: "#directory-listing li, .directory-listing li", row: rowAnchorText},
	{dialect: DialectH5AI, selector: "#fallback table tr", row: rowH5ai},
	{dialect: DialectSnif, selector: "table.snif tr", row: rowAnchorText},
	{dialect: DialectCustomDiv1, selector: "div#listing div", row: rowAnchorText},
	{dialect: DialectCustomDiv2, selector: "div#filelist .tb-row.folder, div#filelist .afile", row: rowTbRow},
	{dialect: DialectHFS, selector: "div#files .item", row: rowAnchorText},
	{dialect: DialectUL, selector: "ul#root li", row: rowAnchorText},
	{dialect: DialectMaterialDesign, selector: "ul.mdui-list li", row: rowAnchorText},
	{dialect: DialectDirectoryLister, selector: "#content ul#file-list li", row: rowDirectoryLister},
	{dialect: DialectListGroup, selector: ".list-group li", row: rowAnchorText},
	{dialect: DialectUL, selector: "ul li", row: rowAnchorText},
}

// dispatchSimple runs the ordered cascade of single-purpose structural
// extractors, trying Pure/Godir first since it carries its own breadcrumb
// precondition, then stripping breadcrumbs and running the common-shape
// cascade. Each is tried independently;
// the first to produce at least one entry wins, per spec.md §4.4's "try
// narrow fingerprints before falling back to looser ones" ordering rule.
func dispatchSimple(doc *goquery.Document, shell *ParsedDirectory, base *url.URL) (*ParsedDirectory, bool) {
	if dir, ok := dispatchPureGodir(doc, shell, base); ok {
		return dir, true
	}
	doc.Find(".breadcrumb, #breadcrumb").Remove()
	for _, ex := range simpleExtractors {
		rows := doc.Find(ex.selector)
		if rows.Length() == 0 {
			continue
		}
		dir := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: ex.dialect}
		added := 0
		rows.Each(func(_ int, row *goquery.Selection) {
			if ex.row(row, dir, base) {
				added++
			}
		})
		if added > 0 {
			return dir, true
		}
	}
	return nil, false
}

// dispatchPureGodir handles the Pure/Godir dialect's table.listing-table:
// this markup shape is generic enough that it also needs a breadcrumb
// whose last segment names the requested directory, to avoid a false
// match on unrelated listing tables (spec.md §9 Open Question (c)). The
// comparison accepts either a raw or percent-decoded match, since Godir's
// breadcrumb renders decoded text while the requested path segment may
// still be percent-encoded.
func dispatchPureGodir(doc *goquery.Document, shell *ParsedDirectory, base *url.URL) (*ParsedDirectory, bool) {
	rows := doc.Find("table.listing-table tbody tr")
	if rows.Length() == 0 {
		return nil, false
	}
	breadcrumb := doc.Find(".breadcrumb, #breadcrumb, nav.breadcrumb").First()
	if breadcrumb.Length() == 0 {
		return nil, false
	}
	requested := decodedLastSegment(base)
	last := strings.TrimSpace(breadcrumb.Find("li, a, span").Last().Text())
	if last == "" {
		last = strings.TrimSpace(breadcrumb.Text())
	}
	decodedLast, _ := url.PathUnescape(last)
	if !strings.EqualFold(last, requested) && !strings.EqualFold(decodedLast, requested) && requested != "" {
		return nil, false
	}

	dir := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectPureGodir}
	added := 0
	rows.Each(func(_ int, row *goquery.Selection) {
		if rowAnchorText(row, dir, base) {
			added++
		}
	})
	if added == 0 {
		return nil, false
	}
	return dir, true
}

// rowAnchorText is the common shape shared by most simple dialects: a row
// containing exactly one meaningful anchor; directory-vs-file is decided by
// a trailing slash on the href or an explicit folder marker class/icon, and
// every other row is a file, sized from a sibling size cell when one parses.
func rowAnchorText(row *goquery.Selection, dir *ParsedDirectory, base *url.URL) bool {
	a := row.Find("a").First()
	if a.Length() == 0 {
		return false
	}
	href, ok := a.Attr("href")
	if !ok {
		return false
	}
	text := strings.TrimSpace(a.Text())
	title, _ := a.Attr("title")
	if !IsValidLink(href, text, title) || isParentOrIconRow(text) {
		return false
	}
	resolved, err := Resolve(base, href)
	if err != nil {
		return false
	}
	resolved.Fragment = ""
	name := text
	if name == "" {
		name = decodedLastSegment(resolved)
	}

	isDir := strings.HasSuffix(href, "/") ||
		row.HasClass("folder") || row.HasClass("dir") ||
		row.Find(".icon-folder, .fa-folder").Length() > 0

	sizeText := strings.TrimSpace(row.Find(".size, td.size, span.size").First().Text())
	if sizeText != "" {
		if size, ok := ParseFileSize(sizeText, false); ok && !isDir {
			dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: size})
			return true
		}
	}
	if isDir {
		dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
	} else {
		dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: UnknownSize})
	}
	return true
}

// rowH5ai handles h5ai's #fallback table: a th-less table whose rows carry a
// class of "folder" or "file" directly, rather than relying on an icon.
func rowH5ai(row *goquery.Selection, dir *ParsedDirectory, base *url.URL) bool {
	if row.Find("th").Length() > 0 {
		return false
	}
	a := row.Find("a").First()
	href, ok := a.Attr("href")
	if !ok {
		return false
	}
	text := strings.TrimSpace(a.Text())
	if !IsValidLink(href, text, "") || isParentOrIconRow(text) {
		return false
	}
	resolved, err := Resolve(base, href)
	if err != nil {
		return false
	}
	resolved.Fragment = ""
	name := text
	if name == "" {
		name = decodedLastSegment(resolved)
	}
	if row.HasClass("folder") || strings.HasSuffix(href, "/") {
		dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
		return true
	}
	sizeText := strings.TrimSpace(row.Find("td").Last().Text())
	size, _ := ParseFileSize(sizeText, false)
	dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: size})
	return true
}

// rowTbRow handles the CustomDiv-2 dialect, where the directory/file
// distinction is already carried by the matched selector's own class
// ("tb-row.folder" vs "afile").
func rowTbRow(row *goquery.Selection, dir *ParsedDirectory, base *url.URL) bool {
	a := row.Find("a").First()
	href, ok := a.Attr("href")
	if !ok {
		href, ok = row.Attr("data-href")
		if !ok {
			return false
		}
	}
	text := strings.TrimSpace(row.Text())
	if !IsValidLink(href, text, "") {
		return false
	}
	resolved, err := Resolve(base, href)
	if err != nil {
		return false
	}
	resolved.Fragment = ""
	name := strings.TrimSpace(a.Text())
	if name == "" {
		name = decodedLastSegment(resolved)
	}
	if row.HasClass("folder") {
		dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
	} else {
		sizeText := strings.TrimSpace(row.Find(".size").Text())
		size, _ := ParseFileSize(sizeText, false)
		dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: size})
	}
	return true
}

// rowDirectoryLister implements the Directory Lister dialect's fixed
// two-item-per-row shape: an icon span followed by the anchor, nothing else.
func rowDirectoryLister(row *goquery.Selection, dir *ParsedDirectory, base *url.URL) bool {
	if row.Children().Length() != 2 {
		return false
	}
	a := row.Find("a").First()
	href, ok := a.Attr("href")
	if !ok {
		return false
	}
	text := strings.TrimSpace(a.Text())
	if !IsValidLink(href, text, "") || isParentOrIconRow(text) {
		return false
	}
	resolved, err := Resolve(base, href)
	if err != nil {
		return false
	}
	resolved.Fragment = ""
	name := text
	if name == "" {
		name = decodedLastSegment(resolved)
	}
	isDir := row.Find(".fa-folder, .icon-folder").Length() > 0 || strings.HasSuffix(href, "/")
	if isDir {
		dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
	} else {
		dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: UnknownSize})
	}
	return true
}

// dispatchAnchorOnly is the last-resort fallback (spec.md §4.4): every valid
// anchor on the page not already known to be chrome (nav/header/footer) is
// treated as a file or directory purely by trailing-slash convention.
func dispatchAnchorOnly(doc *goquery.Document, shell *ParsedDirectory, base *url.URL) (*ParsedDirectory, bool) {
	dir := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectAnchorOnly}
	added := 0
	doc.Find("body a").Each(func(_ int, a *goquery.Selection) {
		if a.Closest("nav, header, footer, .breadcrumb").Length() > 0 {
			return
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		text := strings.TrimSpace(a.Text())
		title, _ := a.Attr("title")
		if !IsValidLink(href, text, title) || isParentOrIconRow(text) {
			return
		}
		resolved, err := Resolve(base, href)
		if err != nil {
			return
		}
		resolved.Fragment = ""
		name := text
		if name == "" {
			name = decodedLastSegment(resolved)
		}
		if strings.HasSuffix(href, "/") {
			dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
		} else {
			dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: UnknownSize})
		}
		added++
	})
	if added == 0 {
		return nil, false
	}
	return dir, true
}

// jsDrawnDirPattern and jsDrawnFilePattern recognize the JavaScript-drawn
// dialect's document.write-style calls, e.g. _d('subdir') / _f('file.txt',
// 1024, '14-Jun-2021 10:00').
var jsDrawnDirPattern = regexp.MustCompile(`_d\(\s*'([^']*)'\s*\)`)
var jsDrawnFilePattern = regexp.MustCompile(`_f\(\s*'([^']*)'\s*,\s*'?(-?\d+)'?\s*(?:,\s*'([^']*)')?\s*\)`)

// dispatchJavaScriptDrawn scans every <script> body for _d(...)/_f(...)
// calls, since this dialect never puts entries in the DOM at all — they only
// exist as arguments to a client-side rendering routine.
func dispatchJavaScriptDrawn(doc *goquery.Document, shell *ParsedDirectory, base *url.URL) (*ParsedDirectory, bool) {
	dir := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectJavaScriptDrawn}
	added := 0
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		for _, m := range jsDrawnDirPattern.FindAllStringSubmatch(body, -1) {
			name := m[1]
			if name == "" || name == ".." {
				continue
			}
			resolved, err := Resolve(base, name+"/")
			if err != nil {
				continue
			}
			dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
			added++
		}
		for _, m := range jsDrawnFilePattern.FindAllStringSubmatch(body, -1) {
			name := m[1]
			if name == "" {
				continue
			}
			size, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil || size < 0 {
				size = UnknownSize
			}
			resolved, err := Resolve(base, name)
			if err != nil {
				continue
			}
			dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: size})
			added++
		}
	})
	if added == 0 {
		return nil, false
	}
	return dir, true
}
