// Package inventory renders a parsed directory tree into a human-readable
// report. It holds no parsing logic of its own; it is a read-only view over
// a parser.ParsedDirectory built by the crawler.
package inventory

import (
	"fmt"
	"strings"

	"opendirindex/parser"
)

// RenderTree returns an indented tree of dir and its subdirectories/files,
// in the style of a "tree" command output.
func RenderTree(dir *parser.ParsedDirectory) string {
	var sb strings.Builder
	renderNode(&sb, dir, "")
	return sb.String()
}

func renderNode(sb *strings.Builder, dir *parser.ParsedDirectory, indent string) {
	name := dir.Name
	if name == "" {
		name = dir.URL
	}
	marker := ""
	if dir.Error {
		marker = " [unreadable]"
	}
	fmt.Fprintf(sb, "%s%s/%s\n", indent, name, marker)

	childIndent := indent + "  "
	for _, file := range dir.Files {
		fmt.Fprintf(sb, "%s%s (%s)\n", childIndent, file.FileName, formatSize(file.FileSize))
	}
	for _, sub := range dir.Subdirectories {
		renderNode(sb, sub, childIndent)
	}
}

func formatSize(size int64) string {
	if size <= 0 {
		return "unknown size"
	}
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// TotalSize sums the sizes of every file reachable from dir, treating an
// unknown size as zero, per the parser's UnknownSize convention.
func TotalSize(dir *parser.ParsedDirectory) int64 {
	var total int64
	for _, file := range dir.Files {
		total += file.FileSize
	}
	for _, sub := range dir.Subdirectories {
		total += TotalSize(sub)
	}
	return total
}

// CountFiles counts every file reachable from dir.
func CountFiles(dir *parser.ParsedDirectory) int {
	count := len(dir.Files)
	for _, sub := range dir.Subdirectories {
		count += CountFiles(sub)
	}
	return count
}

// CountDirectories counts dir and every subdirectory reachable from it.
func CountDirectories(dir *parser.ParsedDirectory) int {
	count := 1
	for _, sub := range dir.Subdirectories {
		count += CountDirectories(sub)
	}
	return count
}
