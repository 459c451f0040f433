package parser

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// model01Entry mirrors the {name,path,type,size,items[]} tree node the
// Model-01 dialect's JSON index uses.
type model01Entry struct {
	Name  string         `json:"name"`
	Path  string         `json:"path"`
	Type  string         `json:"type"`
	Size  int64          `json:"size"`
	Items []model01Entry `json:"items"`
}

var model01ScriptGet = regexp.MustCompile(`\$\.get\(\s*['"]([^'"]+)['"]`)

// detectModel01 recognizes the Model-01 dialect's signature markup (spec.md
// §4.7): a div.filemanager root plus a script tag referencing script.js that
// fetches a JSON index via $.get(...).
func detectModel01(doc *goquery.Document) (indexURL string, ok bool) {
	if doc.Find("div.filemanager").Length() == 0 {
		return "", false
	}
	var found string
	doc.Find(`script[src*="script.js"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		if m := model01ScriptGet.FindStringSubmatch(body); m != nil {
			found = m[1]
			return false
		}
		return true
	})
	if found == "" {
		return "", false
	}
	return found, true
}

// dispatchModel01 always gets attempted regardless of which other dialect
// matched (spec.md §4.7 design note: its markup footprint is distinct enough
// that it can coexist with a generic-table false match on the same page).
// It fetches the index once and turns its recursive tree into a
// ParsedDirectory.
func dispatchModel01(ctx context.Context, doc *goquery.Document, shell *ParsedDirectory, base *url.URL, client HTTPClient) (*ParsedDirectory, bool) {
	indexPath, ok := detectModel01(doc)
	if !ok || client == nil {
		return nil, false
	}
	indexURL, err := Resolve(base, indexPath)
	if err != nil {
		return nil, false
	}
	body, err := fetchText(ctx, client, indexURL.String())
	if err != nil {
		return nil, false
	}
	var root model01Entry
	if err := json.Unmarshal([]byte(body), &root); err != nil {
		return nil, false
	}

	dir := &ParsedDirectory{URL: shell.URL, Parent: shell.Parent, Parser: DialectModel01}
	buildModel01Tree(root.Items, dir, base)
	return dir, true
}

func buildModel01Tree(items []model01Entry, dir *ParsedDirectory, base *url.URL) {
	for _, item := range items {
		if item.Name == "" || item.Name == ".." {
			continue
		}
		resolved, err := Resolve(base, strings.TrimPrefix(item.Path, "/"))
		if err != nil {
			continue
		}
		if strings.EqualFold(item.Type, "dir") || strings.EqualFold(item.Type, "folder") {
			sub := &ParsedDirectory{URL: resolved.String(), Name: item.Name, Parent: dir}
			buildModel01Tree(item.Items, sub, resolved)
			dir.Subdirectories = append(dir.Subdirectories, sub)
			continue
		}
		size := item.Size
		if size < 0 {
			size = UnknownSize
		}
		dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: item.Name, FileSize: size})
	}
}
