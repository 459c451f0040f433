package parser

import (
	"net/url"
	"strings"
)

// pseudoFilesystemNames are directory names that only ever appear as OS
// virtual filesystems leaking through a misconfigured autoindex (spec.md
// §4.9): never worth descending into.
var pseudoFilesystemNames = map[string]bool{
	"dev": true, "lib": true, "proc": true, "run": true,
	"snap": true, "sys": true, "var": true, "usr": true,
}

// dynamicEntryNames are filenames that indicate a server-generated listing
// artifact rather than real content (spec.md §4.9's "core" files — e.g. a
// process core dump some crawled servers accidentally expose).
var dynamicEntryNames = map[string]bool{
	"core": true,
}

// sanitize implements C7: strip sort-order query params from entry URLs,
// drop out-of-scope entries, prune pseudo-filesystem and dynamic-artifact
// names, clear the fragment of the directory's own http(s) URL, and break
// symlink loops detected via ancestor comparison. Entry URLs are not
// fragment-stripped here; they keep whatever fragment the extractor left on
// them. It mutates dir in place and also returns it for chaining.
func sanitize(dir *ParsedDirectory, checkParents bool, ancestorDepth int) *ParsedDirectory {
	base, err := url.Parse(dir.URL)

	files := dir.Files[:0]
	for _, f := range dir.Files {
		f.URL = StripUrl(f.URL)
		if dynamicEntryNames[strings.ToLower(f.FileName)] {
			continue
		}
		if err == nil && !sameHostAndDirectory(base, f.URL) {
			continue
		}
		files = append(files, f)
	}
	dir.Files = files

	subs := dir.Subdirectories[:0]
	for _, sub := range dir.Subdirectories {
		sub.URL = StripUrl(sub.URL)
		if sub.URL == "" || sub.Name == "" {
			continue
		}
		if pseudoFilesystemNames[strings.ToLower(sub.Name)] {
			continue
		}
		if err == nil && !sameHostAndDirectory(base, sub.URL) {
			continue
		}
		subs = append(subs, sub)
	}
	dir.Subdirectories = subs

	if base != nil {
		base.Fragment = ""
		if base.Scheme == "http" || base.Scheme == "https" {
			dir.URL = base.String()
		}
	}

	if checkParents && isSymlinkLoop(dir, ancestorDepth) {
		return markSymlinkLoop(dir)
	}

	return dir
}

// markSymlinkLoop empties a directory discovered to be looping back on one
// of its own ancestors and marks it Error = true; no ParseError (of the
// SymlinkLoop kind or any other) is produced for it.
func markSymlinkLoop(dir *ParsedDirectory) *ParsedDirectory {
	dir.Subdirectories = nil
	dir.Files = nil
	dir.Error = true
	dir.ParsedSuccessfully = false
	return dir
}

// sameHostAndDirectory rejects an entry whose resolved URL escaped the
// requesting directory's host or climbed above it (spec.md §4.9 parent-scope
// rule): an autoindex can legitimately link sideways or down, never up and
// out, except to the whitelisted remote backends.
func sameHostAndDirectory(base *url.URL, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return true
	}
	if !strings.EqualFold(u.Hostname(), base.Hostname()) {
		return WhitelistedBackendHosts[strings.ToLower(u.Hostname())]
	}
	// Compare against the base's directory part, so a base that ends in a
	// filename (index.php, browse.cgi?dir=...) still scopes its siblings.
	basePath := ReplaceCommonDefaultFilenames(base.Path)
	if !strings.HasSuffix(basePath, "/") {
		basePath = basePath[:strings.LastIndex(basePath, "/")+1]
	}
	return strings.HasPrefix(ReplaceCommonDefaultFilenames(u.Path), basePath)
}

// symlinkAncestorDepth bounds the ancestor walk isSymlinkLoop performs,
// matching spec.md §4.9's "bounded depth" requirement so a deeply recursive
// but otherwise legitimate tree is never mistaken for a loop.
const symlinkAncestorDepth = 8

// isSymlinkLoop reports whether dir's identity (its file signature and
// subdirectory-name sequence) already appears among its own ancestors, which
// is the only signal a stateless-per-page parser has available to detect a
// symlinked directory that points back at one of its parents: the parent
// chain was already parsed by the time dir is, so both sides carry real
// entries to compare.
func isSymlinkLoop(dir *ParsedDirectory, ancestorDepth int) bool {
	for _, ancestor := range dir.ancestors(ancestorDepth) {
		if sameFileSignature(ancestor, dir) && sameSubdirectoryNames(ancestor, dir) {
			return true
		}
	}
	return false
}

// sameFileSignature compares two directories' file lists by the ordered
// {name,size} sequence, since a genuine loop re-lists the identical entries
// in the identical order every time it's crawled.
func sameFileSignature(a, b *ParsedDirectory) bool {
	if len(a.Files) != len(b.Files) || len(a.Files) == 0 {
		return false
	}
	for i := range a.Files {
		if a.Files[i].FileName != b.Files[i].FileName || a.Files[i].FileSize != b.Files[i].FileSize {
			return false
		}
	}
	return true
}

// sameSubdirectoryNames compares the ordered subdirectory-name sequence,
// the second half of the loop signature alongside sameFileSignature.
func sameSubdirectoryNames(a, b *ParsedDirectory) bool {
	if len(a.Subdirectories) != len(b.Subdirectories) {
		return false
	}
	for i := range a.Subdirectories {
		if a.Subdirectories[i].Name != b.Subdirectories[i].Name {
			return false
		}
	}
	return true
}
