package parser

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
)

// HTTPClient is the minimal surface the parser core needs for its two
// suspension points: fetching a Google-Drive-index sourcemap and fetching
// the Model-01 JSON index. The crawler supplies a pooled client; tests
// supply a stub.
type HTTPClient interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// WhitelistedBackendHosts are the remote backends entries are allowed to
// point at even though they don't share the requesting directory's host
// (spec.md §3 invariant 3, §4.8 step 2).
var WhitelistedBackendHosts = map[string]bool{
	"drive.google.com":  true,
	"docs.google.com":   true,
	"blitzfiles.tech":   true,
	"ipfs.io":           true,
	"gateway.ipfs.io":   true,
}

// MaxThreadsClamp is the crawler's global concurrency cap exposed to the
// core purely so Google-Drive detection can lower it, per spec.md §4.4/§5.
// It is the only cross-page mutation the parser performs and is updated
// with an atomic compare-and-swap so concurrent pages never race setting
// it back up after another page has already clamped it down.
type MaxThreadsClamp struct {
	value atomic.Int64
}

// NewMaxThreadsClamp creates a clamp initialized to n.
func NewMaxThreadsClamp(n int) *MaxThreadsClamp {
	c := &MaxThreadsClamp{}
	c.value.Store(int64(n))
	return c
}

// Get returns the current cap.
func (c *MaxThreadsClamp) Get() int { return int(c.value.Load()) }

// ClampToOne sets the cap to min(current, 1) atomically.
func (c *MaxThreadsClamp) ClampToOne() {
	for {
		cur := c.value.Load()
		if cur <= 1 {
			return
		}
		if c.value.CompareAndSwap(cur, 1) {
			return
		}
	}
}

// hostGate recognizes host-keyed remote backends (spec.md §4.4 step 1).
// It returns the dialect to delegate to, or DialectUnknown if host isn't a
// recognized remote backend.
func hostGate(base *url.URL) Dialect {
	switch strings.ToLower(base.Hostname()) {
	case "ipfs.io", "gateway.ipfs.io":
		return DialectIPFS
	case "blitzfiles.tech":
		return DialectBlitzfiles
	}
	return DialectUnknown
}

// googleDriveIndexMapping classifies a script URL as one of the known
// Google-Drive index frontends by filename, mirroring
// GoogleDriveIndexMapping.GetGoogleDriveIndexType from spec.md §6.
func googleDriveIndexMapping(scriptURL string) Dialect {
	lower := strings.ToLower(scriptURL)
	switch {
	case strings.Contains(lower, "bhadoo"):
		return DialectGoogleDriveBhadoo
	case strings.Contains(lower, "go2index"):
		return DialectGoogleDriveGo2
	case strings.Contains(lower, "goindex"):
		return DialectGoogleDriveGo
	case strings.Contains(lower, "gindex"), strings.Contains(lower, "gdindex"):
		return DialectGoogleDriveGd
	}
	return DialectUnknown
}

var sourceMapCommentPattern = regexp.MustCompile(`//#\s*sourceMappingURL=(\S+)`)

// detectGoogleDriveScript implements spec.md §4.4 step 2: scan every
// <script src>, classify it, and if the script is app.min.js with no direct
// match, follow its sourcemap comment and retry classification against
// each file the sourcemap's source list names. Returns DialectUnknown if
// nothing in the page classifies.
//
// client may be nil, in which case the sourcemap follow-up is skipped
// (SubfetchFailure is swallowed, never escalated to the directory's own
// error state, per spec.md §7).
func detectGoogleDriveScript(ctx context.Context, doc *goquery.Document, base *url.URL, client HTTPClient) Dialect {
	var found Dialect
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return true
		}
		if d := googleDriveIndexMapping(src); d != DialectUnknown {
			found = d
			return false
		}
		if client == nil {
			return true
		}
		if !strings.Contains(strings.ToLower(src), "app.min.js") {
			return true
		}
		scriptURL, err := Resolve(base, src)
		if err != nil {
			return true
		}
		body, err := fetchText(ctx, client, scriptURL.String())
		if err != nil {
			return true // SubfetchFailure: continue without this signal
		}
		m := sourceMapCommentPattern.FindStringSubmatch(body)
		if m == nil {
			return true
		}
		mapURL, err := Resolve(scriptURL, m[1])
		if err != nil {
			return true
		}
		mapBody, err := fetchText(ctx, client, mapURL.String())
		if err != nil {
			return true
		}
		for _, source := range extractSourceMapSources(mapBody) {
			if d := googleDriveIndexMapping(source); d != DialectUnknown {
				found = d
				return false
			}
		}
		return true
	})
	return found
}

var sourceMapSourcesPattern = regexp.MustCompile(`"sources"\s*:\s*\[([^\]]*)\]`)
var sourceMapEntryPattern = regexp.MustCompile(`"([^"]+)"`)

// extractSourceMapSources pulls the "sources" array out of a sourcemap's
// JSON text without a full JSON decode, since the only thing the core
// needs is the list of filenames to re-classify.
func extractSourceMapSources(sourceMapJSON string) []string {
	m := sourceMapSourcesPattern.FindStringSubmatch(sourceMapJSON)
	if m == nil {
		return nil
	}
	matches := sourceMapEntryPattern.FindAllStringSubmatch(m[1], -1)
	out := make([]string, 0, len(matches))
	for _, mm := range matches {
		out = append(out, mm[1])
	}
	return out
}

func fetchText(ctx context.Context, client HTTPClient, url string) (string, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if err != nil {
			break
		}
	}
	return string(buf), nil
}

// remoteDelegateResult builds the placeholder result for a remote backend
// whose "internal protocol is opaque to the core" (spec.md §6): the core
// only records which dialect was selected, it never speaks the backend's
// actual protocol.
func remoteDelegateResult(shell *ParsedDirectory, dialect Dialect) *ParsedDirectory {
	shell.Parser = dialect
	shell.ParsedSuccessfully = true
	return shell
}
