// Package parser implements the directory-listing parser core: given raw
// HTML (or a raw FTP LIST body) and the URL it came from, it classifies the
// listing dialect, extracts entries, sanitizes the result and returns a
// ParsedDirectory. It performs no recursion and no crawling of its own.
package parser

import "time"

// HeaderType is the semantic role assigned to a table column by the header
// classifier (C3).
type HeaderType int

const (
	HeaderUnknown HeaderType = iota
	HeaderFileName
	HeaderFileSize
	HeaderModified
	HeaderDescription
	HeaderType_ // column holds a type/icon indicator, not a name
)

func (t HeaderType) String() string {
	switch t {
	case HeaderFileName:
		return "FileName"
	case HeaderFileSize:
		return "FileSize"
	case HeaderModified:
		return "Modified"
	case HeaderDescription:
		return "Description"
	case HeaderType_:
		return "Type"
	default:
		return "Unknown"
	}
}

// HeaderInfo describes one classified table column.
type HeaderInfo struct {
	Header string
	Type   HeaderType
}

// ColumnMap maps a 1-based column index to its classified header.
type ColumnMap map[int]HeaderInfo

// Dialect tags the extractor that produced a ParsedDirectory, for
// diagnostics only; it carries no semantic weight.
type Dialect string

const (
	DialectUnknown           Dialect = ""
	DialectTable             Dialect = "ParseTablesDirectoryListing"
	DialectH5AI              Dialect = "H5ai"
	DialectSnif              Dialect = "Snif"
	DialectPureGodir         Dialect = "PureGodir"
	DialectCustomDiv1        Dialect = "CustomDiv1"
	DialectCustomDiv2        Dialect = "CustomDiv2"
	DialectHFS               Dialect = "HFS"
	DialectPreFormatted      Dialect = "PreFormatted"
	DialectJavaScriptDrawn   Dialect = "JavaScriptDrawn"
	DialectDirectoryListing  Dialect = "DirectoryListingCom"
	DialectUL                Dialect = "GenericUL"
	DialectMaterialDesign    Dialect = "MaterialDesignList"
	DialectDirectoryLister   Dialect = "DirectoryLister"
	DialectListGroup         Dialect = "ListGroup"
	DialectAnchorOnly        Dialect = "AnchorOnlyFallback"
	DialectModel01           Dialect = "Model01Json"
	DialectIPFS              Dialect = "IPFSGateway"
	DialectBlitzfiles        Dialect = "Blitzfiles"
	DialectGoogleDriveBhadoo Dialect = "BhadooIndex"
	DialectGoogleDriveGo     Dialect = "GoIndex"
	DialectGoogleDriveGo2    Dialect = "Go2Index"
	DialectGoogleDriveGd     Dialect = "GdIndex"
	DialectFTPList           Dialect = "FTPList"
)

// UnknownSize is the sentinel fileSize value meaning "size unknown", per
// spec: a zero-byte file and an unknown-size file are represented the same
// way rather than distinguished.
const UnknownSize int64 = 0

// ParsedFile is one file entry inside a ParsedDirectory.
type ParsedFile struct {
	URL         string
	FileName    string
	FileSize    int64
	Description string
}

// ParsedDirectory is one directory instance discovered by the crawl. The
// caller creates the shell (URL + Parent only); the parser core populates
// everything else and the sanitizer finalizes it.
type ParsedDirectory struct {
	URL                string
	Name               string
	Parent             *ParsedDirectory
	Subdirectories     []*ParsedDirectory
	Files              []*ParsedFile
	Description        string
	Parser             Dialect
	ParsedSuccessfully bool
	Error              bool
	HeaderCount        int

	StartTime  time.Time
	FinishTime time.Time
	Finished   bool
}

// NewShell creates the input shell a caller passes into ParseHtml: only the
// URL and an optional parent are known before parsing.
func NewShell(url string, parent *ParsedDirectory) *ParsedDirectory {
	return &ParsedDirectory{URL: url, Parent: parent}
}

// ancestors walks Parent references outward, most recent first.
func (d *ParsedDirectory) ancestors(max int) []*ParsedDirectory {
	var out []*ParsedDirectory
	for p := d.Parent; p != nil && len(out) < max; p = p.Parent {
		out = append(out, p)
	}
	return out
}
