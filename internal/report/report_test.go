package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Project:    "shop",
		AnalyzedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Files: []models.SourceFile{
			{
				Path: "/src/shop/b/Cart.java", RelativePath: "b/Cart.java", Language: "java",
				TotalLines: 30, CodeLines: 25, CommentLines: 2, Cyclomatic: 19, Maintainability: 55.24,
				Units: []models.UnitMetrics{
					{Name: "add", Kind: models.UnitMethod, Signature: "void add(int a, int b)", Cyclomatic: 2, LinesOfCode: 5, Maintainability: 84.39},
					{Name: "price", Kind: models.UnitMethod, Signature: "int price()", Cyclomatic: 17, LinesOfCode: 20, Maintainability: 18.1},
				},
			},
			{
				Path: "/src/shop/a/Empty.java", RelativePath: "a/Empty.java", Language: "java",
				TotalLines: 3, CodeLines: 3, Maintainability: 100,
			},
		},
		Duplicates: []models.DuplicateGroup{{
			Fingerprint: "0123456789abcdef",
			TokenCount:  33,
			Occurrences: []models.Occurrence{
				{File: "/src/shop/b/Cart.java", StartLine: 4, EndLine: 9, Preview: "void add(int a, int b) (5 lines, CC=2)"},
				{File: "/src/shop/c/Cart.java", StartLine: 4, EndLine: 9, Preview: "void add(int a, int b) (5 lines, CC=2)"},
			},
		}},
		Summary: models.Summary{
			TotalFiles: 2, TotalUnits: 2, TotalCyclomatic: 1234, AvgMaintainability: 51.245, DuplicateGroups: 1,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, strings.Join(CSVHeader, ","), lines[0])
	assert.Equal(t, "File,/src/shop/b/Cart.java,b/Cart.java,30,25,2,19,55.2,add,2,5,84.4", lines[1])
	assert.Equal(t, "File,/src/shop/b/Cart.java,b/Cart.java,30,25,2,19,55.2,price,17,20,18.1", lines[2])
	assert.Equal(t, "File,/src/shop/a/Empty.java,a/Empty.java,3,3,0,0,100.0,,,,", lines[3])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "Duplicates,Hash,FilePath,LineStart,LineEnd,Preview", lines[5])
	assert.Equal(t, `Duplicate,0123456789abcdef,/src/shop/b/Cart.java,4,9,"void add(int a, int b) (5 lines, CC=2)"`, lines[6])
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// The blank separator line is skipped by the reader.
	require.Len(t, records, 7)
	assert.Len(t, records[0], 12)
	assert.Len(t, records[3], 12)
	assert.Equal(t, "void add(int a, int b) (5 lines, CC=2)", records[5][5])
}

func TestRenderHTML(t *testing.T) {
	r, err := NewRenderer(config.DefaultConfig().Thresholds)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(sampleResult(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<title>Code Quality Report - shop</title>")
	assert.Contains(t, html, "Generated: 2026-03-04 05:06:07 UTC")
	assert.Contains(t, html, `<span class="value">1,234</span><br>Total Cyclomatic Complexity`)
	assert.Contains(t, html, `<span class="value warn">51.2</span>`)
	assert.Contains(t, html, `<td rowspan="2">b/Cart.java</td>`)
	assert.Contains(t, html, `<td class="bad">17</td>`)
	assert.Contains(t, html, `<td class="bad">18.1</td>`)
	assert.Contains(t, html, `<td class="good">2</td>`)
	assert.Contains(t, html, `<td>Method</td>`)
	assert.Contains(t, html, `<td colspan="5">-</td>`)
	assert.Contains(t, html, "<code>0123456789abcdef</code>")
	assert.Contains(t, html, "/src/shop/b/Cart.java L4-9; /src/shop/c/Cart.java L4-9")
	assert.NotContains(t, html, "Skipped Files")

	assert.Less(t, strings.Index(html, "a/Empty.java"), strings.Index(html, "b/Cart.java"),
		"files are ordered by relative path")
}

func TestRenderHTMLEscapes(t *testing.T) {
	r, err := NewRenderer(config.DefaultConfig().Thresholds)
	require.NoError(t, err)

	result := sampleResult()
	result.Project = "<script>"
	result.Warnings = []models.Warning{{Path: "/src/Bad.java", Error: "syntax error"}}

	var buf bytes.Buffer
	require.NoError(t, r.Render(result, &buf))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
	assert.Contains(t, buf.String(), "Skipped Files")
}

func TestRenderHTMLNoDuplicates(t *testing.T) {
	r, err := NewRenderer(config.DefaultConfig().Thresholds)
	require.NoError(t, err)

	result := sampleResult()
	result.Duplicates = nil

	var buf bytes.Buffer
	require.NoError(t, r.Render(result, &buf))
	assert.NotContains(t, buf.String(), "Code Duplication")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	th := config.DefaultConfig().Thresholds

	htmlPath := DefaultPath(dir, "html")
	assert.Equal(t, filepath.Join(dir, "code-metrics-report.html"), htmlPath)
	require.NoError(t, WriteFile(sampleResult(), "html", htmlPath, th))

	csvPath := DefaultPath(dir, "csv")
	require.NoError(t, WriteFile(sampleResult(), "csv", csvPath, th))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Report Type,"))

	assert.Error(t, WriteFile(sampleResult(), "pdf", filepath.Join(dir, "x.pdf"), th))
}
