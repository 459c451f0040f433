package parser

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Option configures a ParseHtml call. Omitting an option keeps the default
// behavior, so callers that only need ParseHtml(ctx, shell, html) never
// have to think about them.
type Option func(*parseConfig)

type parseConfig struct {
	client        HTTPClient
	clamp         *MaxThreadsClamp
	checkParents  bool
	serverHeader  string
	ancestorDepth int
}

// WithHTTPClient supplies the client the parser uses for its two remote
// suspension points (Google-Drive sourcemap follow-up, Model-01 JSON
// fetch). Without one, both are skipped rather than attempted with no
// transport.
func WithHTTPClient(c HTTPClient) Option { return func(cfg *parseConfig) { cfg.client = c } }

// WithConcurrencyClamp wires in the crawler's shared MaxThreadsClamp so a
// detected Google-Drive frontend can lower it (spec.md §4.4/§5).
func WithConcurrencyClamp(c *MaxThreadsClamp) Option { return func(cfg *parseConfig) { cfg.clamp = c } }

// WithCheckParents toggles the symlink-loop ancestor walk (C7); defaults to
// true. A caller re-parsing a page outside a real crawl (e.g. a unit test
// with no parent chain) can disable it since there's nothing to compare
// against anyway.
func WithCheckParents(check bool) Option { return func(cfg *parseConfig) { cfg.checkParents = check } }

// WithServerHeader passes along the HTTP response's Server header as a
// dispatch hint: it never substitutes for structural detection, it only
// reorders the preformatted-text regex family (C4/§4.5) so the shape that
// server is known to emit is tried first.
func WithServerHeader(server string) Option { return func(cfg *parseConfig) { cfg.serverHeader = server } }

// WithSymlinkAncestorDepth overrides how many ancestors the symlink-loop
// check walks (C7); zero or unset keeps the default of 8.
func WithSymlinkAncestorDepth(n int) Option {
	return func(cfg *parseConfig) { cfg.ancestorDepth = n }
}

// ParseHtml is the parser core's entry point. shell carries the directory's
// URL and (if this is a recursive crawl) its parent; ParseHtml populates
// everything else, sanitizes the result, and always returns a usable
// *ParsedDirectory — even on failure, where Error is set true instead of
// the call returning a bare error, per the error-envelope contract (C8).
func ParseHtml(ctx context.Context, shell *ParsedDirectory, html string, opts ...Option) *ParsedDirectory {
	cfg := parseConfig{checkParents: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	dir := &ParsedDirectory{URL: shell.URL, Name: shell.Name, Parent: shell.Parent}
	dir.StartTime = time.Now()

	base, err := url.Parse(shell.URL)
	if err != nil {
		dir.Error = true
		dir.FinishTime = time.Now()
		dir.Finished = true
		return dir
	}

	if dir.Name == "" {
		dir.Name = decodedLastSegment(base)
	}

	family := orderedPreRegexFamily(cfg.serverHeader)

	result := dir
	parseErr := envelope(dir, func() error {
		out, err := dispatch(ctx, shell, html, base, cfg.client, cfg.clamp, family)
		if err != nil {
			return err
		}
		out.Name = dir.Name
		result = out
		return nil
	})

	if parseErr != nil && IsCancelled(parseErr) {
		dir.Error = true
		dir.ParsedSuccessfully = false
		dir.Finished = true
		dir.FinishTime = time.Now()
		return dir
	}

	result.URL = shell.URL
	result.Parent = shell.Parent
	result.StartTime = dir.StartTime
	if result.Name == "" {
		result.Name = dir.Name
	}
	if parseErr == nil {
		depth := cfg.ancestorDepth
		if depth <= 0 {
			depth = symlinkAncestorDepth
		}
		result = sanitize(result, cfg.checkParents, depth)
	}
	result.Finished = true
	result.FinishTime = time.Now()
	return result
}

// orderedPreRegexFamily reorders the R1-R8 family so the shape a known
// server header is likely to emit is tried first, without removing any
// entry or changing how each one classifies a match.
func orderedPreRegexFamily(serverHeader string) []preRegex {
	hint := strings.ToLower(serverHeader)
	var preferred string
	switch {
	case strings.Contains(hint, "apache"):
		preferred = "R1"
	case strings.Contains(hint, "iis"):
		preferred = "R4"
	case strings.Contains(hint, "nginx"):
		preferred = "R2"
	}
	if preferred == "" {
		return preRegexFamily
	}
	out := make([]preRegex, 0, len(preRegexFamily))
	for _, pr := range preRegexFamily {
		if pr.name == preferred {
			out = append([]preRegex{pr}, out...)
		} else {
			out = append(out, pr)
		}
	}
	return out
}
