package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Project:    "demo",
		AnalyzedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Files: []models.SourceFile{
			{
				RelativePath: "src/Zeta.java", Language: "java", TotalLines: 20, CodeLines: 18,
				Cyclomatic: 17, Maintainability: 51.2,
				Units: []models.UnitMetrics{
					{Name: "run", Kind: models.UnitMethod, Signature: "void run()", StartLine: 3, EndLine: 19, Cyclomatic: 17, LinesOfCode: 15, Maintainability: 51.2},
				},
			},
			{
				RelativePath: "src/Alpha.java", Language: "java", TotalLines: 4, CodeLines: 4,
				Maintainability: 100,
			},
		},
		Duplicates: []models.DuplicateGroup{{
			Fingerprint: "00000000000000ff",
			TokenCount:  31,
			Occurrences: []models.Occurrence{
				{File: "/p/A.java", StartLine: 2, EndLine: 10, Preview: "void run() (9 lines, CC=3)"},
				{File: "/p/B.java", StartLine: 2, EndLine: 10, Preview: "void run() (9 lines, CC=3)"},
			},
		}},
		Summary:  models.Summary{TotalFiles: 2, TotalUnits: 1, DuplicateGroups: 1, DuplicateOccurrences: 2, SkippedFiles: 1},
		Warnings: []models.Warning{{Path: "/p/Bad.java", Error: "syntax error"}},
	}
}

func TestMetricsReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, MetricsReport(sampleResult(), config.DefaultConfig().Thresholds), false))

	out := buf.String()
	assert.Contains(t, out, "Code Metrics: demo")
	assert.Contains(t, out, "void run()")
	assert.Contains(t, out, "bad", "CC 17 exceeds the error threshold")
	assert.Contains(t, out, "00000000000000ff")
	assert.Contains(t, out, "/p/Bad.java")
	assert.Less(t, strings.Index(out, "src/Alpha.java"), strings.Index(out, "src/Zeta.java"))
}

func TestMetricsReportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatMarkdown, MetricsReport(sampleResult(), config.DefaultConfig().Thresholds), false))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Code Metrics: demo"))
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "## Duplicates (1 groups)")
	assert.Contains(t, out, "| src/Zeta.java | void run() | 3-19 | 17 | 15 | 51.2 | bad |")
}

func TestMetricsReportJSONEncodesResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, MetricsReport(sampleResult(), config.DefaultConfig().Thresholds), false))

	var decoded models.AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "demo", decoded.Project)
	assert.Len(t, decoded.Files, 2)
	assert.Equal(t, 17, decoded.Files[0].Units[0].Cyclomatic)
	assert.Equal(t, 1, decoded.Summary.SkippedFiles)
}

func TestDuplicatesReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, DuplicatesReport(sampleResult()), false))

	var decoded struct {
		Project    string                  `json:"project"`
		Duplicates []models.DuplicateGroup `json:"duplicates"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "demo", decoded.Project)
	require.Len(t, decoded.Duplicates, 1)
	assert.Equal(t, []string{"/p/A.java", "/p/B.java"}, decoded.Duplicates[0].Files())
}

func TestWorst(t *testing.T) {
	assert.Equal(t, config.LevelOK, worst())
	assert.Equal(t, config.LevelWarn, worst(config.LevelOK, config.LevelWarn))
	assert.Equal(t, config.LevelError, worst(config.LevelError, config.LevelWarn))
}

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "analysis-result.schema.json"))
	require.NoError(t, err)
	defer f.Close()

	doc, err := jsonschema.UnmarshalJSON(f)
	require.NoError(t, err)
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource("analysis-result.schema.json", doc))
	sch, err := c.Compile("analysis-result.schema.json")
	require.NoError(t, err)
	return sch
}

func TestMetricsReportJSONSchema(t *testing.T) {
	sch := compileSchema(t)
	validate := func(r *models.AnalysisResult) error {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatJSON, MetricsReport(r, config.DefaultConfig().Thresholds), false))
		inst, err := jsonschema.UnmarshalJSON(&buf)
		require.NoError(t, err)
		return sch.Validate(inst)
	}

	assert.NoError(t, validate(sampleResult()))
	assert.NoError(t, validate(&models.AnalysisResult{Project: "empty"}))

	single := sampleResult()
	single.Duplicates[0].Occurrences = single.Duplicates[0].Occurrences[:1]
	assert.Error(t, validate(single), "a group needs two occurrences")

	badHash := sampleResult()
	badHash.Duplicates[0].Fingerprint = "FF"
	assert.Error(t, validate(badHash))
}
