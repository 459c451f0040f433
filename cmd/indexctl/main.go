// Command indexctl is a thin demonstration harness for the parser core: it
// fetches one or more root URLs with the crawler client, runs the parser
// core (recursing through the crawler, never itself), writes each root's
// tree to the inventory file, and prints a run summary. It is not part of
// the parser core's scope.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"opendirindex/api"
	"opendirindex/cli"
	"opendirindex/config"
	"opendirindex/crawler"
	"opendirindex/filter"
	"opendirindex/logging"
	"opendirindex/output"
)

func main() {
	configPath := flag.String("config", "./config.json", "Path to config file")
	outputPath := flag.String("output", "", "Override output directory")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	filterStr := flag.String("filter", "", "File extensions to exclude from the inventory (comma-separated, e.g. .jpg,.ico)")
	maxDepthFlag := flag.Int("max-depth", 0, "Override maximum crawl depth")
	flag.Parse()

	roots := flag.Args()

	logger := logging.NewLogger()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if *outputPath != "" {
		cfg.OutputDir = *outputPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *maxDepthFlag > 0 {
		cfg.MaxCrawlDepth = *maxDepthFlag
	}

	logger.SetLevel(cfg.LogLevel)
	if err := logger.SetOutputFile(cfg.LogFile); err != nil {
		logger.Error("Failed to open log file %s: %v", cfg.LogFile, err)
	}

	cli.PrintBanner()

	if len(roots) == 0 {
		fmt.Println("Usage: indexctl [flags] <root-url> [root-url...]")
		os.Exit(1)
	}

	hosts := make([]api.Host, 0, len(roots))
	for _, root := range roots {
		hosts = append(hosts, api.Host{URL: root})
	}

	startTime := time.Now()

	writer, err := output.NewWriter(cfg.OutputDir, logger)
	if err != nil {
		logger.Error("Failed to initialize output writer: %v", err)
		os.Exit(1)
	}
	defer writer.Close()

	fileFilter := filter.NewFilter(cli.ParseFilters(*filterStr), logger)
	logger.Info("Excluding extensions: %v", fileFilter.GetFilterExtensions())

	client := crawler.NewClient(cfg.HTTPTimeoutSeconds, logger)
	worker := crawler.NewWorker(client, fileFilter, writer, logger, cfg, cfg.MaxConcurrentRequests)

	worker.ProcessHosts(hosts)

	totalHosts, onlineHosts, totalDirectories, totalFiles, filteredFiles, writeErrors := worker.GetStats()

	endTime := time.Now()
	summary := output.FormatSummary(
		totalHosts, onlineHosts, totalDirectories, totalFiles, filteredFiles,
		fileFilter.GetFilterExtensions(), startTime, endTime,
	)

	logger.Info("\n%s", summary)
	writer.WriteInventory("\n" + summary)

	if writeErrors > 0 {
		logger.Error("%d output write errors occurred during this run; see inventory.txt for partial results", writeErrors)
	}

	logger.Info("Index run complete")
}
