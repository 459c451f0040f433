package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceCommonDefaultFilenames(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"index.php suffix stripped", "/downloads/index.php", "/downloads/"},
		{"index.shtml suffix stripped", "/a/b/index.shtml", "/a/b/"},
		{"DirectoryList.asp exact match", "DirectoryList.asp", ""},
		{"unrelated path untouched", "/a/readme.txt", "/a/readme.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplaceCommonDefaultFilenames(tt.path))
		})
	}
}

func TestStripUrl(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sort query stripped", "http://h/d/?C=N&O=A", "http://h/d/"},
		{"single sort param left alone", "http://h/d/?C=N", "http://h/d/?C=N"},
		{"unrelated query left alone", "http://h/d/?page=2", "http://h/d/?page=2"},
		{"idempotent on already-stripped", "http://h/d/", "http://h/d/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripUrl(tt.in))
			assert.Equal(t, StripUrl(tt.in), StripUrl(StripUrl(tt.in)))
		})
	}
}

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantSize int64
		wantOK   bool
	}{
		{"plain bytes", "1024", 1024, true},
		{"kilobytes", "2kB", 2 * 1024, true},
		{"US thousands style", "1,234.56", 1234, true},
		{"European style", "1.234,56", 1234, true},
		{"dash is unknown", "-", UnknownSize, false},
		{"directory marker is unknown", "<directory>", UnknownSize, false},
		{"empty is unknown", "", UnknownSize, false},
		{"garbage unit rejected", "42 bogus", UnknownSize, false},
		{"gigabytes", "1.5 GB", int64(1.5 * (1 << 30)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFileSize(tt.text, false)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSize, got)
			}
		})
	}
}
