package parser

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// tokenRanges is the set of runes a header token keeps: Latin-script letters
// and decimal digits plus the CJK scripts the multilingual keyword table targets
// (Chinese, Japanese kana). Everything else — punctuation, whitespace,
// parentheses — is dropped before keyword matching.
var tokenRanges = unicode.RangeTable{
	R16: mergeRange16(unicode.Latin.R16, unicode.Han.R16, unicode.Hiragana.R16, unicode.Katakana.R16, unicode.Digit.R16),
	R32: mergeRange32(unicode.Latin.R32, unicode.Han.R32, unicode.Hiragana.R32, unicode.Katakana.R32, unicode.Digit.R32),
}

func mergeRange16(ranges ...[]unicode.Range16) []unicode.Range16 {
	var out []unicode.Range16
	for _, r := range ranges {
		out = append(out, r...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	return out
}

func mergeRange32(ranges ...[]unicode.Range32) []unicode.Range32 {
	var out []unicode.Range32
	for _, r := range ranges {
		out = append(out, r...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	return out
}

var tokenTransformer = transform.Chain(runes.Remove(runes.NotIn(&tokenRanges)))

// headerToken lowercases and strips non-word/non-CJK characters from a
// header cell's text, per spec.md §4.3.
func headerToken(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(tokenTransformer, lower)
	if err != nil {
		return lower
	}
	return out
}

// headerKeyword is one entry of the declarative, locale-agnostic keyword
// table (spec.md §4.3 and §9 design notes: "keep it as a declarative
// mapping so locales can be added without touching logic").
type headerKeyword struct {
	keywords []string
	exact    bool
	typ      HeaderType
}

// headerKeywords is evaluated in order; the first matching entry wins.
// FileName is last because its keywords ("file", "name", ...) would
// otherwise eat "file size" / "filesize" tokens.
var headerKeywords = []headerKeyword{
	{[]string{"lastmodified", "modified", "date", "lastmodification", "time", "修改时间", "修改日期", "最終更新"}, false, HeaderModified},
	{[]string{"type"}, true, HeaderType_},
	{[]string{"size", "filesize", "taille", "大小", "サイズ"}, false, HeaderFileSize},
	{[]string{"description"}, true, HeaderDescription},
	{[]string{"file", "name", "filename", "directory", "link", "nom", "文件", "ファイル名"}, false, HeaderFileName},
}

// classifyHeaderCell maps a header cell's text to its semantic role.
func classifyHeaderCell(text string) HeaderType {
	tok := headerToken(text)
	if tok == "" {
		return HeaderUnknown
	}
	for _, kw := range headerKeywords {
		for _, k := range kw.keywords {
			if kw.exact {
				if tok == k {
					return kw.typ
				}
			} else if strings.Contains(tok, k) {
				return kw.typ
			}
		}
	}
	return HeaderUnknown
}

// buildColumnMap assigns each header cell a 1-based column index, advancing
// the counter by a cell's colspan (defaulting to 1).
func buildColumnMap(cells []headerCell) ColumnMap {
	cm := make(ColumnMap)
	col := 1
	for _, c := range cells {
		typ := classifyHeaderCell(c.text)
		cm[col] = HeaderInfo{Header: strings.TrimSpace(c.text), Type: typ}
		span := c.colspan
		if span < 1 {
			span = 1
		}
		col += span
	}
	return cm
}

// headerCell is a DOM-agnostic view of one header cell, so buildColumnMap
// and the heuristic fallback don't need to know which extractor produced
// them.
type headerCell struct {
	text    string
	colspan int
}

// allUnknown reports whether every column in cm classified as Unknown,
// triggering the heuristic fallback.
func (cm ColumnMap) allUnknown() bool {
	if len(cm) == 0 {
		return true
	}
	for _, h := range cm {
		if h.Type != HeaderUnknown {
			return false
		}
	}
	return true
}

// dataRow is a DOM-agnostic view of one data row used by the heuristic
// column-role fallback (spec.md §4.3): per column, whether it holds an
// anchor, a parseable date, a parseable non-zero size, or an <img>.
type dataRow struct {
	hasAnchor  []bool
	hasDate    []bool
	hasSize    []bool
	hasImg     []bool
}

// heuristicColumnMap infers column roles by tallying signals across data
// rows when the table carries no usable header labels. For each role it
// picks the column index whose average position across rows rounds to a
// valid column, ties broken by first encounter.
func heuristicColumnMap(rows []dataRow) ColumnMap {
	cm := make(ColumnMap)
	assign := func(typ HeaderType, pick func(r dataRow) []bool) {
		sum := 0
		count := 0
		first := -1
		maxCols := 0
		for _, r := range rows {
			flags := pick(r)
			if len(flags) > maxCols {
				maxCols = len(flags)
			}
			for i, present := range flags {
				if present {
					sum += i + 1 // 1-based column index
					count++
					if first == -1 {
						first = i + 1
					}
				}
			}
		}
		if count == 0 {
			return
		}
		avg := (sum + count/2) / count // rounds to nearest
		if avg < 1 || avg > maxCols {
			avg = first
		}
		if avg < 1 {
			return
		}
		existing, ok := cm[avg]
		if !ok || existing.Type == HeaderUnknown {
			cm[avg] = HeaderInfo{Type: typ}
		}
	}

	assign(HeaderFileName, func(r dataRow) []bool { return r.hasAnchor })
	assign(HeaderModified, func(r dataRow) []bool { return r.hasDate })
	assign(HeaderFileSize, func(r dataRow) []bool { return r.hasSize })
	assign(HeaderType_, func(r dataRow) []bool { return r.hasImg })
	return cm
}
