package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ftpUnixLinePattern recognizes a Unix-style FTP LIST line, the same shape
// R7 matches inside a <pre> block but without any surrounding HTML.
var ftpUnixLinePattern = regexp.MustCompile(`^(?P<mode>[dl\-][rwxstST\-]{9})\s+\d+\s+\S+\s+\S+\s+(?P<size>-?\d+)\s+(?P<modified>\w+\s+\d+\s+[\d:]+)\s+(?P<name>.+)$`)

// ftpDosLinePattern recognizes the MS-DOS-style FTP LIST line some FTP(S)
// servers emit instead: "MM-DD-YY HH:MMAM <DIR> name" or "... size name".
var ftpDosLinePattern = regexp.MustCompile(`^(?P<modified>\d{2}-\d{2}-\d{2}\s+\d{2}:\d{2}[AP]M)\s+(?P<size><DIR>|\d+)\s+(?P<name>.+)$`)

// ParseFtpList implements the supplemented FTP(S) LIST extractor: it reuses
// the same Unix-style line shape the preformatted HTML extractor's R7 regex
// recognizes, since both are textual `ls -l`-derived formats, plus the
// MS-DOS style IIS FTP servers use.
func ParseFtpList(webDirectory, body string) *ParsedDirectory {
	shell := NewShell(webDirectory, nil)
	shell.Name = decodedLastSegmentFromRaw(webDirectory)
	dir := &ParsedDirectory{URL: shell.URL, Name: shell.Name, Parser: DialectFTPList}

	base, err := url.Parse(webDirectory)
	if err != nil {
		dir.Error = true
		return dir
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(strings.TrimSpace(line), "\r")
		if line == "" {
			continue
		}
		addFtpListLine(line, dir, base)
	}

	dir.ParsedSuccessfully = true
	return sanitize(dir, false, symlinkAncestorDepth)
}

// LooksLikeFtpList reports whether body's non-empty lines all match the
// Unix or MS-DOS FTP LIST line shape, the signal the crawler uses to decide
// whether to hand a fetched body to ParseFtpList instead of the HTML
// dispatcher. A body containing an "<html" tag is never treated as a
// listing, since a real FTP LIST response carries no tags at all.
func LooksLikeFtpList(body string) bool {
	if strings.Contains(strings.ToLower(body), "<html") {
		return false
	}
	matched, total := 0, 0
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(strings.TrimSpace(line), "\r")
		if line == "" {
			continue
		}
		total++
		if ftpUnixLinePattern.MatchString(line) || ftpDosLinePattern.MatchString(line) {
			matched++
		}
	}
	return total > 0 && matched == total
}

func addFtpListLine(line string, dir *ParsedDirectory, base *url.URL) {
	if m := ftpUnixLinePattern.FindStringSubmatch(line); m != nil {
		g := namedGroups(ftpUnixLinePattern, m)
		name := strings.TrimSpace(g["name"])
		if name == "" || name == "." || name == ".." {
			return
		}
		isDir := strings.HasPrefix(g["mode"], "d")
		size, err := strconv.ParseInt(g["size"], 10, 64)
		if err != nil || size < 0 {
			size = UnknownSize
		}
		appendFtpEntry(dir, base, name, isDir, size)
		return
	}
	if m := ftpDosLinePattern.FindStringSubmatch(line); m != nil {
		g := namedGroups(ftpDosLinePattern, m)
		name := strings.TrimSpace(g["name"])
		if name == "" || name == "." || name == ".." {
			return
		}
		isDir := strings.EqualFold(g["size"], "<DIR>")
		var size int64
		if !isDir {
			size, _ = strconv.ParseInt(g["size"], 10, 64)
		}
		appendFtpEntry(dir, base, name, isDir, size)
	}
}

func appendFtpEntry(dir *ParsedDirectory, base *url.URL, name string, isDir bool, size int64) {
	resolved := *base
	resolved.Path = strings.TrimRight(resolved.Path, "/") + "/" + name
	if isDir {
		dir.Subdirectories = append(dir.Subdirectories, &ParsedDirectory{URL: resolved.String(), Name: name, Parent: dir})
	} else {
		dir.Files = append(dir.Files, &ParsedFile{URL: resolved.String(), FileName: name, FileSize: size})
	}
}

func decodedLastSegmentFromRaw(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return decodedLastSegment(u)
}
