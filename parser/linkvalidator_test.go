package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidLink(t *testing.T) {
	tests := []struct {
		name  string
		href  string
		text  string
		title string
		want  bool
	}{
		{"ordinary file link", "report.pdf", "report.pdf", "", true},
		{"empty href rejected", "", "x", "", false},
		{"parent hash rejected", "#", "x", "", false},
		{"dotdot href rejected", "..", "Parent Directory", "", false},
		{"mailto rejected", "mailto:a@b.com", "contact", "", false},
		{"javascript rejected", "javascript:void(0)", "x", "", false},
		{"parent directory text rejected", "sub/", "Parent Directory", "", false},
		{"title dotdot rejected", "sub/", "sub", "..", false},
		{"expand query rejected", "sub/?view=1&expand=1", "sub", "", false},
		{"sort query rejected", "?N=D", "Size", "", false},
		{"sort query allowed for DirectoryList.asp", "DirectoryList.asp?N=D", "Downloads", "", true},
		{"DirectoryList.asp empty text rejected", "DirectoryList.asp?dir=x", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidLink(tt.href, tt.text, tt.title))
		})
	}
}

func TestIsParentOrIconRow(t *testing.T) {
	assert.True(t, isParentOrIconRow("Parent Directory"))
	assert.True(t, isParentOrIconRow("  ..  "))
	assert.False(t, isParentOrIconRow("report.pdf"))
}
