package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"opendirindex/api"
	"opendirindex/config"
	"opendirindex/filter"
	"opendirindex/inventory"
	"opendirindex/logging"
	"opendirindex/output"
	"opendirindex/parser"
	"opendirindex/scanners"
)

// Worker coordinates parallel crawling of hosts. It is the external
// collaborator spec.md §1 describes: it fetches pages and recurses into
// subdirectories, calling the parser core once per page and never sharing
// parsing logic with it.
type Worker struct {
	client           *Client
	filter           *filter.Filter
	writer           *output.Writer
	logger           *logging.Logger
	directoryScanner *scanners.DirectoryScanner
	config           *config.Config
	maxWorkers       int
	clamp            *parser.MaxThreadsClamp
	skippedHosts     *sync.Map // hosts that hit limits this run
	blockedHosts     *sync.Map // in-memory cache of blocked base hosts
	skipCounters     *sync.Map // truncation counters per base host
	stats            *ScanStats
	blocklist        *filter.Blocklist
	processedCount   int64
}

// ScanStats tracks statistics during scanning
type ScanStats struct {
	totalHosts       int
	onlineHosts      int
	totalDirectories int
	totalFiles       int
	filteredFiles    int
	writeErrors      int
	mu               sync.Mutex
}

// NewWorker creates a new worker for coordinating crawling
func NewWorker(client *Client, fileFilter *filter.Filter, writer *output.Writer, logger *logging.Logger, cfg *config.Config, maxWorkers int) *Worker {
	blocklist := filter.NewBlocklist(cfg.BlocklistFile, cfg.EnableBlocklist, logger)
	if err := blocklist.Load(); err != nil {
		logger.Error("Failed to load blocklist from %s: %v - continuing with empty blocklist (previously blocked hosts may be rescanned)", cfg.BlocklistFile, err)
	}

	for _, host := range cfg.WhitelistedBackendHosts {
		parser.WhitelistedBackendHosts[strings.ToLower(host)] = true
	}

	return &Worker{
		client:           client,
		filter:           fileFilter,
		writer:           writer,
		logger:           logger,
		directoryScanner: scanners.NewDirectoryScanner(logger),
		config:           cfg,
		maxWorkers:       maxWorkers,
		clamp:            parser.NewMaxThreadsClamp(maxWorkers),
		skippedHosts:     &sync.Map{},
		blockedHosts:     &sync.Map{},
		skipCounters:     &sync.Map{},
		stats:            &ScanStats{},
		blocklist:        blocklist,
	}
}

// ProcessHosts crawls each host in parallel
func (w *Worker) ProcessHosts(hosts []api.Host) {
	w.logger.Info("Starting to process %d hosts", len(hosts))
	w.stats.totalHosts = len(hosts)

	hostChan := make(chan api.Host, len(hosts))
	var wg sync.WaitGroup

	for _, host := range hosts {
		hostChan <- host
	}
	close(hostChan)

	for i := 0; i < w.maxWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for host := range hostChan {
				w.processHost(host)
				// Once a parse has lowered the clamp, workers past it stop
				// taking new hosts.
				if id >= w.clamp.Get() {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if err := w.blocklist.Close(); err != nil {
		w.logger.Error("Failed to close blocklist: %v", err)
	}

	w.logger.Info("Finished processing all hosts")
}

// processHost handles a single root host: fetches it, runs the parser core,
// then recurses into any subdirectories up to the configured crawl depth.
func (w *Worker) processHost(host api.Host) {
	count := atomic.AddInt64(&w.processedCount, 1)
	if count%10 == 0 {
		w.logger.Info("Progress: %d/%d hosts processed", count, w.stats.totalHosts)
	}
	w.logger.Info("Processing host: %s", host.URL)

	baseHost := w.extractBaseHost(host.URL)

	if w.blocklist.IsBlocked(baseHost) {
		w.logger.Debug("Skipping host - in persistent blocklist: %s", host.URL)
		return
	}
	if _, isBlocked := w.blockedHosts.Load(baseHost); isBlocked {
		w.logger.Debug("Skipping host - base host is blocked: %s", host.URL)
		return
	}
	if _, shouldSkip := w.skippedHosts.Load(host.URL); shouldSkip {
		return
	}

	online, htmlContent, err := w.client.CheckHostAndFetch(host)
	if err != nil {
		w.logger.Error("Error checking host %s: %v", host.URL, err)
		return
	}
	if !online {
		w.logger.Debug("Host is offline: %s", host.URL)
		return
	}

	w.stats.mu.Lock()
	w.stats.onlineHosts++
	w.stats.mu.Unlock()

	if !w.directoryScanner.IsDirectoryListing(htmlContent) && !parser.LooksLikeFtpList(htmlContent) {
		w.logger.Debug("Host content is not a directory listing: %s", host.URL)
		return
	}

	shell := parser.NewShell(host.URL, nil)
	root := w.crawl(shell, htmlContent, 0, baseHost)

	w.recordTree(root)
}

// crawl runs the parser core on one fetched page and recurses into its
// subdirectories, replacing each shell with its own fully parsed result. A
// fetched body that isn't HTML at all but matches the FTP LIST line shape
// (an FTP(S) listing rather than an autoindex page) is handed to the
// dedicated FTP extractor instead of the HTML dispatcher.
func (w *Worker) crawl(shell *parser.ParsedDirectory, body string, depth int, baseHost string) *parser.ParsedDirectory {
	var result *parser.ParsedDirectory
	if !w.directoryScanner.IsDirectoryListing(body) && parser.LooksLikeFtpList(body) {
		result = parser.ParseFtpList(shell.URL, body)
		result.Parent = shell.Parent
	} else {
		server := w.client.ServerHeader(context.Background(), shell.URL)
		result = parser.ParseHtml(context.Background(), shell, body,
			parser.WithHTTPClient(w.client),
			parser.WithConcurrencyClamp(w.clamp),
			parser.WithServerHeader(server),
			parser.WithCheckParents(true),
			parser.WithSymlinkAncestorDepth(w.config.SymlinkAncestorDepth),
		)
	}

	w.applyFilter(result)

	w.stats.mu.Lock()
	w.stats.totalDirectories++
	w.stats.totalFiles += len(result.Files)
	w.stats.mu.Unlock()

	if w.config.MaxLinksPerDirectory > 0 && len(result.Subdirectories) > w.config.MaxLinksPerDirectory {
		w.logger.Info("Directory has %d subdirectories, truncating to %d: %s",
			len(result.Subdirectories), w.config.MaxLinksPerDirectory, result.URL)
		result.Subdirectories = result.Subdirectories[:w.config.MaxLinksPerDirectory]
		w.registerTruncation(baseHost)
	}

	if depth+1 >= w.config.MaxCrawlDepth {
		return result
	}

	for i, sub := range result.Subdirectories {
		if _, blocked := w.blockedHosts.Load(baseHost); blocked {
			w.skippedHosts.Store(shell.URL, true)
			break
		}

		online, subBody, err := w.client.CheckHostAndFetch(api.Host{URL: sub.URL})
		if err != nil || !online {
			w.logger.Debug("Failed to fetch subdirectory %s: %v", sub.URL, err)
			continue
		}
		if !w.directoryScanner.IsDirectoryListing(subBody) && !parser.LooksLikeFtpList(subBody) {
			w.logger.Debug("Not a directory listing, skipping: %s", sub.URL)
			continue
		}

		subShell := parser.NewShell(sub.URL, result)
		result.Subdirectories[i] = w.crawl(subShell, subBody, depth+1, baseHost)
	}

	return result
}

// registerTruncation counts a directory that was cut off for exceeding
// MaxLinksPerDirectory, blocking the base host after enough of them.
func (w *Worker) registerTruncation(baseHost string) {
	skipCountPtr, _ := w.skipCounters.LoadOrStore(baseHost, new(int64))
	newSkipCount := atomic.AddInt64(skipCountPtr.(*int64), 1)

	if w.config.MaxSkipsBeforeBlock > 0 && newSkipCount >= int64(w.config.MaxSkipsBeforeBlock) {
		reason := fmt.Sprintf("exceeded %d truncated directories (limit %d per directory)", newSkipCount, w.config.MaxLinksPerDirectory)
		w.logger.Info("Blocking entire base host after %d truncated directories: %s", newSkipCount, baseHost)
		w.blockedHosts.Store(baseHost, true)
		w.blocklist.AddHost(baseHost, reason)
	}
}

// applyFilter drops noise files from dir.Files and records them to the
// filtered output, in place.
func (w *Worker) applyFilter(dir *parser.ParsedDirectory) {
	if w.filter == nil || len(dir.Files) == 0 {
		return
	}

	kept := dir.Files[:0]
	for _, f := range dir.Files {
		if w.filter.ShouldFilter(f.URL) {
			w.stats.mu.Lock()
			w.stats.filteredFiles++
			w.stats.mu.Unlock()

			if err := w.writer.WriteFilteredOutput(f.URL); err != nil {
				w.stats.mu.Lock()
				w.stats.writeErrors++
				w.stats.mu.Unlock()
			}
			continue
		}
		kept = append(kept, f)
	}
	dir.Files = kept
}

func (w *Worker) recordTree(root *parser.ParsedDirectory) {
	block := fmt.Sprintf("=== %s ===\n%s", root.URL, inventory.RenderTree(root))
	if err := w.writer.WriteInventory(block); err != nil {
		w.stats.mu.Lock()
		w.stats.writeErrors++
		w.stats.mu.Unlock()
	}
}

// GetStats returns the current scan statistics
func (w *Worker) GetStats() (totalHosts, onlineHosts, totalDirectories, totalFiles, filteredFiles, writeErrors int) {
	w.stats.mu.Lock()
	defer w.stats.mu.Unlock()
	return w.stats.totalHosts, w.stats.onlineHosts, w.stats.totalDirectories,
		w.stats.totalFiles, w.stats.filteredFiles, w.stats.writeErrors
}

// extractBaseHost extracts the base host (hostname only) from a full URL
func (w *Worker) extractBaseHost(fullURL string) string {
	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		w.logger.Debug("Failed to parse URL %s: %v", fullURL, err)
		return fullURL
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return parsedURL.Host
	}
	return hostname
}
