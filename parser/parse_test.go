package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHtmlApacheClassicPreformatted(t *testing.T) {
	html := `<html><body><pre>
<img src="/icons/folder.gif" alt="[DIR]"> <a href="subdir/">subdir/</a>                14-Jun-2021 10:00    -
<img src="/icons/text.gif" alt="[TXT]"> <a href="report.txt">report.txt</a>            14-Jun-2021 10:01  2.0K
</pre></body></html>`

	shell := NewShell("http://example.com/files/", nil)
	result := ParseHtml(context.Background(), shell, html)

	require.False(t, result.Error)
	require.True(t, result.ParsedSuccessfully)
	assert.Equal(t, DialectPreFormatted, result.Parser)
	require.Len(t, result.Subdirectories, 1)
	assert.Equal(t, "subdir", result.Subdirectories[0].Name)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "report.txt", result.Files[0].FileName)
	assert.Equal(t, int64(2*1024), result.Files[0].FileSize)
}

func TestParseHtmlGenericTable(t *testing.T) {
	html := `<html><body><table>
<tr><th>Name</th><th>Last modified</th><th>Size</th></tr>
<tr><td><a href="sub/">sub/</a></td><td>2021-06-14 10:00</td><td>-</td></tr>
<tr><td><a href="data.csv">data.csv</a></td><td>2021-06-14 10:01</td><td>4.0K</td></tr>
</table></body></html>`

	shell := NewShell("http://example.com/files/", nil)
	result := ParseHtml(context.Background(), shell, html)

	require.False(t, result.Error)
	assert.Equal(t, DialectTable, result.Parser)
	require.Len(t, result.Subdirectories, 1)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "data.csv", result.Files[0].FileName)
	assert.Equal(t, int64(4*1024), result.Files[0].FileSize)
}

func TestParseHtmlNoRecognizedMarkupIsFriendlyFailure(t *testing.T) {
	html := `<html><body><p>hello, nothing to index here</p></body></html>`
	shell := NewShell("http://example.com/empty/", nil)
	result := ParseHtml(context.Background(), shell, html)

	assert.True(t, result.Error)
	assert.False(t, result.ParsedSuccessfully)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Subdirectories)
}

func TestEnvelopePassesCancellationThroughUnconverted(t *testing.T) {
	dir := &ParsedDirectory{URL: "http://example.com/x/", Files: []*ParsedFile{{FileName: "keep.txt"}}}
	err := envelope(dir, func() error { return context.Canceled })

	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.False(t, dir.Error)
	assert.NotEmpty(t, dir.Files)
}

func TestEnvelopeConvertsFriendlyFailure(t *testing.T) {
	dir := &ParsedDirectory{URL: "http://example.com/x/", Files: []*ParsedFile{{FileName: "drop.txt"}}}
	err := envelope(dir, func() error { return friendlyf("breadcrumb mismatch") })

	require.Error(t, err)
	assert.False(t, IsCancelled(err))
	assert.True(t, dir.Error)
	assert.Empty(t, dir.Files)
}

func TestSanitizeStripsSortQueryAndPrunesPseudoFilesystem(t *testing.T) {
	dir := &ParsedDirectory{
		URL: "http://example.com/root/",
		Subdirectories: []*ParsedDirectory{
			{URL: "http://example.com/root/proc/?C=N&O=A", Name: "proc"},
			{URL: "http://example.com/root/photos/?C=N&O=A", Name: "photos"},
		},
		Files: []*ParsedFile{
			{URL: "http://example.com/root/core", FileName: "core"},
			{URL: "http://example.com/root/readme.txt", FileName: "readme.txt"},
		},
	}
	out := sanitize(dir, false, symlinkAncestorDepth)
	require.Len(t, out.Subdirectories, 1)
	assert.Equal(t, "photos", out.Subdirectories[0].Name)
	assert.Equal(t, "http://example.com/root/photos/", out.Subdirectories[0].URL)
	require.Len(t, out.Files, 1)
	assert.Equal(t, "readme.txt", out.Files[0].FileName)
}

func TestSanitizeDetectsSymlinkLoop(t *testing.T) {
	root := &ParsedDirectory{
		URL:   "http://example.com/a/",
		Name:  "a",
		Files: []*ParsedFile{{FileName: "x.txt", FileSize: 10}},
	}
	child := &ParsedDirectory{
		URL:    "http://example.com/a/loop/",
		Name:   "a",
		Parent: root,
		Files:  []*ParsedFile{{FileName: "x.txt", FileSize: 10}},
	}
	out := sanitize(child, true, symlinkAncestorDepth)
	assert.True(t, out.Error)
	assert.Empty(t, out.Files)
}
