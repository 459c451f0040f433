package parser

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// detectTableHeaders implements the header-detection cascade of spec.md
// §4.3: try each strategy in order and stop at the first one that locates
// header cells.
func detectTableHeaders(table *goquery.Selection) (cells []headerCell, removeFirstRow bool, found bool) {
	// (1) a <th> ancestor row, unless its first cell carries colspan.
	thRow := firstRowWithSelector(table, "th")
	if thRow != nil {
		first := thRow.Find("th, td").First()
		if _, has := first.Attr("colspan"); !has {
			return cellsFromRow(thRow, "th, td"), false, true
		}
		// first cell has colspan: likely a title bar, discard and fall through.
	}

	// (2) Snif-style .snHeading row.
	if snif := table.Find("tr.snHeading").First(); snif.Length() > 0 {
		return cellsFromRow(snif, "td, th"), false, true
	}

	// (3) thead td|th.
	if theadRow := table.Find("thead tr").First(); theadRow.Length() > 0 {
		return cellsFromRow(theadRow, "td, th"), false, true
	}

	// (4) first-row th.
	firstRow := table.Find("tr").First()
	if firstRow.Length() > 0 {
		if firstRow.Find("th").Length() > 0 {
			return cellsFromRow(firstRow, "th"), false, true
		}
		// (5) first-row td, flagged removeFirstRow.
		if firstRow.Find("td").Length() > 0 {
			return cellsFromRow(firstRow, "td"), true, true
		}
	}

	return nil, false, false
}

func firstRowWithSelector(table *goquery.Selection, sel string) *goquery.Selection {
	var found *goquery.Selection
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.Find(sel).Length() > 0 {
			found = row
			return false
		}
		return true
	})
	return found
}

func cellsFromRow(row *goquery.Selection, sel string) []headerCell {
	var cells []headerCell
	row.Find(sel).Each(func(_ int, cell *goquery.Selection) {
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				span = n
			}
		}
		cells = append(cells, headerCell{text: cell.Text(), colspan: span})
	})
	return cells
}

// candidateTable pairs a table with the ColumnMap and entry count the
// dispatcher uses to pick the winning table when several match (spec.md
// §4.6: "greatest named-header count, ties broken by total entries").
type candidateTable struct {
	sel        *goquery.Selection
	columnMap  ColumnMap
	namedCount int
	dir        *ParsedDirectory
	entries    int
	splitByDir bool // true when rows carry ?dir= distinguishing subdir listings
}

// dispatchGenericTables implements the generic table extractor (C4 / spec
// §4.6) across every <table> on the page, then the table-selection rule in
// its last paragraph.
func dispatchGenericTables(doc *goquery.Document, shell *ParsedDirectory, base *url.URL) (*ParsedDirectory, bool, error) {
	var candidates []candidateTable

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers, removeFirstRow, found := detectTableHeaders(table)
		cm := buildColumnMap(headers)
		named := 0
		for _, h := range cm {
			if h.Type != HeaderUnknown {
				named++
			}
		}

		dir := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectTable, HeaderCount: named}
		splitByDir := false
		entries := extractTableRows(table, cm, found, removeFirstRow, dir, base, &splitByDir)

		if cm.allUnknown() {
			// Fall back to the heuristic column map over this table's rows.
			rows := collectDataRowSignals(table, base)
			hcm := heuristicColumnMap(rows)
			if !hcm.allUnknown() {
				dir = &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectTable}
				entries = extractTableRows(table, hcm, true, false, dir, base, &splitByDir)
				named = 0
				for _, h := range hcm {
					if h.Type != HeaderUnknown {
						named++
					}
				}
				dir.HeaderCount = named
			}
		}

		if entries > 0 {
			candidates = append(candidates, candidateTable{sel: table, columnMap: cm, namedCount: named, dir: dir, entries: entries, splitByDir: splitByDir})
		}
	})

	if len(candidates) == 0 {
		return nil, false, nil
	}
	if len(candidates) == 1 {
		return candidates[0].dir, true, nil
	}

	// Separate subdirectory/file split signaled by ?dir= on directory rows:
	// merge instead of choosing one.
	var splitCandidates []candidateTable
	var normalCandidates []candidateTable
	for _, c := range candidates {
		if c.splitByDir {
			splitCandidates = append(splitCandidates, c)
		} else {
			normalCandidates = append(normalCandidates, c)
		}
	}
	if len(splitCandidates) >= 2 {
		merged := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectTable}
		for _, c := range splitCandidates {
			merged.Subdirectories = append(merged.Subdirectories, c.dir.Subdirectories...)
			merged.Files = append(merged.Files, c.dir.Files...)
			if c.namedCount > merged.HeaderCount {
				merged.HeaderCount = c.namedCount
			}
		}
		return merged, true, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.namedCount > best.namedCount || (c.namedCount == best.namedCount && c.entries > best.entries) {
			best = c
		}
	}
	return best.dir, true, nil
}

// extractTableRows walks table's data rows, classifies and appends entries
// to dir, and returns how many were added.
func extractTableRows(table *goquery.Selection, cm ColumnMap, hasHeader, removeFirstRow bool, dir *ParsedDirectory, base *url.URL, splitByDir *bool) int {
	count := 0
	skippedFirst := false
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if !rowBelongsToTable(table, row) {
			return
		}
		if removeFirstRow && !skippedFirst {
			skippedFirst = true
			return
		}
		if row.Find("th").Length() > 0 && hasHeader {
			return
		}

		text := row.Text()
		if isParentOrIconRow(text) {
			return
		}

		a := row.Find("a").First()
		if a.Length() == 0 {
			return
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		linkText := strings.TrimSpace(a.Text())
		title, _ := a.Attr("title")
		if !IsValidLink(href, linkText, title) {
			return
		}
		if strings.Contains(strings.ToLower(text), "parent directory") {
			return
		}

		entry := classifyTableRow(row, cm, href, linkText, base)
		if entry == nil {
			return
		}
		if entry.isDir {
			if entry.fromDirParam {
				*splitByDir = true
			}
			sub := &ParsedDirectory{URL: entry.url, Name: entry.name, Parent: dir, Description: entry.description}
			dir.Subdirectories = append(dir.Subdirectories, sub)
		} else {
			dir.Files = append(dir.Files, &ParsedFile{URL: entry.url, FileName: entry.name, FileSize: entry.size, Description: entry.description})
		}
		count++
	})
	return count
}

func rowBelongsToTable(table *goquery.Selection, row *goquery.Selection) bool {
	closest := row.Closest("table")
	return closest.Length() > 0 && closest.Get(0) == table.Get(0)
}

type tableRowEntry struct {
	isDir        bool
	fromDirParam bool
	url          string
	name         string
	size         int64
	description  string
}

// classifyTableRow implements the directory/file disjunctions and the
// name-preference rules of spec.md §4.6.
func classifyTableRow(row *goquery.Selection, cm ColumnMap, href, linkText string, base *url.URL) *tableRowEntry {
	resolved, err := Resolve(base, href)
	if err != nil {
		return nil
	}
	resolved.Fragment = ""

	q := hrefQuery(href)
	isDir := rowSignalsDirectory(row, href, q)

	var sizeText string
	var sizeCol int
	cells := row.Find("td")
	for col, h := range cm {
		if h.Type == HeaderFileSize {
			sizeCol = col
		}
	}
	if sizeCol > 0 && sizeCol <= cells.Length() {
		sizeText = strings.TrimSpace(cells.Eq(sizeCol - 1).Text())
	}
	hasSizeHeader := sizeCol > 0
	size, sizeOK := ParseFileSize(sizeText, false)
	lowerSize := strings.ToLower(sizeText)

	hrefHasTrailingSlash := strings.HasSuffix(strings.TrimRight(href, "?#"), "/") || strings.HasSuffix(hrefPathOnly(href), "/")

	isFile := false
	if q.Get("file") != "" {
		isFile = true
	} else if !isDir && q.Get("dir") == "" {
		if !hasSizeHeader && !hrefHasTrailingSlash {
			isFile = true
		} else if sizeOK && size != UnknownSize && lowerSize != "0.00b" && !strings.Contains(lowerSize, "item") && !hrefHasTrailingSlash {
			isFile = true
		}
	}

	if isDir {
		name, fromDirParam := tableDirName(q, row, resolved)
		return &tableRowEntry{isDir: true, fromDirParam: fromDirParam, url: resolved.String(), name: name}
	}
	if isFile {
		name := tableFileName(q, row, resolved, linkText)
		return &tableRowEntry{isDir: false, url: resolved.String(), name: name, size: size}
	}
	return nil
}

func hrefQuery(href string) url.Values {
	if idx := strings.Index(href, "?"); idx >= 0 {
		v, err := url.ParseQuery(href[idx+1:])
		if err == nil {
			return v
		}
	}
	return url.Values{}
}

func hrefPathOnly(href string) string {
	h := href
	if idx := strings.IndexAny(h, "?#"); idx >= 0 {
		h = h[:idx]
	}
	return h
}

func rowSignalsDirectory(row *goquery.Selection, href string, q url.Values) bool {
	if row.Find(".icon-folder, .fa-folder, .folder").Length() > 0 {
		return true
	}
	if row.HasClass("dir") {
		return true
	}
	if alt, ok := row.Find(`img[alt="[DIR]"]`).Attr("alt"); ok && alt != "" {
		return true
	}
	directoryImg := false
	row.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		src = strings.ToLower(src)
		if strings.Contains(src, "dir") || strings.Contains(src, "folder") {
			directoryImg = true
			return false
		}
		return true
	})
	if directoryImg {
		return true
	}
	for _, key := range []string{"dirname", "dir", "directory", "folder"} {
		if q.Get(key) != "" {
			return true
		}
	}
	// No explicit icon/class/query signal: fall back to the href shape
	// itself, the most common Apache-style signal of all — a trailing
	// slash with no query string.
	if strings.Contains(href, "?") {
		return false
	}
	return strings.HasSuffix(href, "/")
}

func tableDirName(q url.Values, row *goquery.Selection, resolved *url.URL) (string, bool) {
	if v := q.Get("folder"); v != "" {
		if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
			return string(decoded), true
		}
		return v, true
	}
	if v := q.Get("directory"); v != "" {
		return v, true
	}
	if v := q.Get("dirname"); v != "" {
		return v, true
	}
	if v := q.Get("dir"); v != "" {
		return v, true
	}
	if row.Find("a.name").Length() > 0 {
		return strings.TrimSpace(row.Find("a.name").First().Text()), false
	}
	return decodedLastSegment(resolved), false
}

func tableFileName(q url.Values, row *goquery.Selection, resolved *url.URL, linkText string) string {
	if v := q.Get("file"); v != "" {
		return v
	}
	if v := q.Get("url"); v != "" {
		segs := strings.Split(strings.TrimRight(v, "/"), "/")
		return segs[len(segs)-1]
	}
	seg := decodedLastSegment(resolved)
	if row.Find("a.name").Length() > 0 || seg == "" {
		if linkText != "" {
			return linkText
		}
	}
	if seg == "" {
		return linkText
	}
	return seg
}

func decodedLastSegment(u *url.URL) string {
	p := strings.TrimRight(u.EscapedPath(), "/")
	idx := strings.LastIndex(p, "/")
	seg := p
	if idx >= 0 {
		seg = p[idx+1:]
	}
	if decoded, err := url.PathUnescape(seg); err == nil {
		return decoded
	}
	return seg
}

// collectDataRowSignals builds the DOM-agnostic dataRow slice the heuristic
// header fallback needs (spec.md §4.3).
func collectDataRowSignals(table *goquery.Selection, base *url.URL) []dataRow {
	var rows []dataRow
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if !rowBelongsToTable(table, row) || row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		n := cells.Length()
		if n == 0 {
			return
		}
		dr := dataRow{
			hasAnchor: make([]bool, n),
			hasDate:   make([]bool, n),
			hasSize:   make([]bool, n),
			hasImg:    make([]bool, n),
		}
		cells.Each(func(i int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if cell.Find("a").Length() > 0 {
				dr.hasAnchor[i] = true
			}
			if cell.Find("img").Length() > 0 {
				dr.hasImg[i] = true
			}
			if isParseableDate(text) {
				dr.hasDate[i] = true
			}
			if size, ok := ParseFileSize(text, true); ok && size != UnknownSize {
				dr.hasSize[i] = true
			}
		})
		rows = append(rows, dr)
	})
	return rows
}
