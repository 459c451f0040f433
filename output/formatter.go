package output

import (
	"fmt"
	"strings"
	"time"
)

// FormatTimestamp formats a time for display in outputs
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// FormatSummary creates a summary of a crawl run across all root hosts.
func FormatSummary(
	totalHosts int,
	onlineHosts int,
	totalDirectories int,
	totalFiles int,
	filteredFiles int,
	noiseFilters []string,
	startTime time.Time,
	endTime time.Time,
) string {
	duration := endTime.Sub(startTime)

	filterStr := "None"
	if len(noiseFilters) > 0 {
		filterStr = strings.Join(noiseFilters, ", ")
	}

	var summary strings.Builder
	summary.WriteString("=== Index Summary ===\n")
	summary.WriteString(fmt.Sprintf("Start time: %s\n", FormatTimestamp(startTime)))
	summary.WriteString(fmt.Sprintf("End time: %s\n", FormatTimestamp(endTime)))
	summary.WriteString(fmt.Sprintf("Duration: %s\n", duration.Round(time.Second)))
	summary.WriteString(fmt.Sprintf("Total hosts: %d\n", totalHosts))
	summary.WriteString(fmt.Sprintf("Online hosts: %d\n", onlineHosts))
	summary.WriteString(fmt.Sprintf("Directories indexed: %d\n", totalDirectories))
	summary.WriteString(fmt.Sprintf("Files found: %d\n", totalFiles))
	summary.WriteString(fmt.Sprintf("Filtered (excluded) files: %d\n", filteredFiles))
	summary.WriteString(fmt.Sprintf("Noise filters: %s\n", filterStr))
	summary.WriteString("======================\n")

	return summary.String()
}
