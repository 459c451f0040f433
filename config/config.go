package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	OutputDir             string `json:"output_dir"`
	HTTPTimeoutSeconds    int    `json:"http_timeout_seconds"`
	MaxConcurrentRequests int    `json:"max_concurrent_requests"`
	LogLevel              string `json:"log_level"`
	LogFile               string `json:"log_file"`

	// MaxCrawlDepth bounds how many directory levels the crawler parses per
	// root URL, the root itself counting as the first level.
	MaxCrawlDepth int `json:"max_crawl_depth"`
	// SymlinkAncestorDepth bounds the parser's ancestor-equality loop check.
	SymlinkAncestorDepth int `json:"symlink_ancestor_depth"`
	// WhitelistedBackendHosts extends the parser's built-in remote-backend
	// allowlist (drive.google.com, ipfs.io, ...) with site-specific hosts.
	WhitelistedBackendHosts []string `json:"whitelisted_backend_hosts"`

	// MaxLinksPerDirectory caps how many entries a single directory page may
	// contribute before the crawler logs and truncates it, a safety valve
	// against pathological or hostile listings.
	MaxLinksPerDirectory int `json:"max_links_per_directory"`

	// BlocklistFile persists hosts the crawler has given up on across runs.
	BlocklistFile string `json:"blocklist_file"`
	// EnableBlocklist turns persistent host blocking on or off.
	EnableBlocklist bool `json:"enable_blocklist"`
	// MaxSkipsBeforeBlock is how many truncated directories on the same base
	// host it takes before that host is added to the blocklist.
	MaxSkipsBeforeBlock int `json:"max_skips_before_block"`
}

// LoadConfig loads and validates the application configuration from a file
func LoadConfig(path string) (*Config, error) {
	// Set default values
	config := &Config{
		OutputDir:             "./output",
		HTTPTimeoutSeconds:    15,
		MaxConcurrentRequests: 10,
		LogLevel:              "INFO",
		LogFile:               "./indexer.log",
		MaxCrawlDepth:         20,
		SymlinkAncestorDepth:  8,
		MaxLinksPerDirectory:  2000,
		BlocklistFile:         "./blocklist.txt",
		EnableBlocklist:       true,
		MaxSkipsBeforeBlock:   5,
	}

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON
	err = json.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that required fields carry usable defaults
func validateConfig(cfg *Config) error {
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 15 // Default to 15 seconds
	}
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 10 // Default to 10 concurrent requests
	}
	if cfg.MaxCrawlDepth <= 0 {
		cfg.MaxCrawlDepth = 20
	}
	if cfg.SymlinkAncestorDepth <= 0 {
		cfg.SymlinkAncestorDepth = 8
	}
	if cfg.MaxLinksPerDirectory <= 0 {
		cfg.MaxLinksPerDirectory = 2000
	}

	// Create output directory if it doesn't exist
	if _, err := os.Stat(cfg.OutputDir); os.IsNotExist(err) {
		err := os.MkdirAll(cfg.OutputDir, 0755)
		if err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return nil
}
