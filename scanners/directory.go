// Package scanners provides a cheap pre-filter the crawler runs before
// handing a fetched page to the parser core, to avoid spending a full
// dispatch cascade on pages that plainly aren't directory listings at all.
package scanners

import (
	"strings"

	"opendirindex/logging"

	"github.com/PuerkitoBio/goquery"
)

// DirectoryScanner holds the logger used for its debug trail; it carries no
// parsing state of its own.
type DirectoryScanner struct {
	logger *logging.Logger
}

// NewDirectoryScanner creates a new directory scanner instance
func NewDirectoryScanner(logger *logging.Logger) *DirectoryScanner {
	return &DirectoryScanner{logger: logger}
}

// IsDirectoryListing is a heuristic pre-filter, not a dialect match: it
// exists so the crawler can skip the parser core entirely on pages that are
// obviously not listings (a login page, a 404 page dressed up as 200, a
// blog post). A page this heuristic rejects is never handed to the parser;
// a page it accepts still goes through the full dispatch cascade, which may
// itself find nothing and report a friendly failure.
func (ds *DirectoryScanner) IsDirectoryListing(htmlContent string) bool {
	content := strings.ToLower(htmlContent)

	directoryIndicators := []string{
		"index of",
		"directory listing",
		"parent directory",
		"<title>index of",
		"apache/",
		"nginx/",
	}

	for _, indicator := range directoryIndicators {
		if strings.Contains(content, indicator) {
			ds.logger.Debug("Directory listing detected: found indicator %q", indicator)
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return false
	}

	linkCount := 0
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if exists && href != "../" && href != ".." && href != "." && href != "/" {
			linkCount++
		}
	})

	if linkCount > 5 {
		ds.logger.Debug("Directory listing detected: found %d links", linkCount)
		return true
	}

	return false
}
