package output

import (
	"fmt"
	"sort"

	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
)

// MetricsReport builds the terminal rendering of an analysis result: a
// summary, a per-unit table and the duplicate groups. JSON and TOON
// encode the result itself.
func MetricsReport(r *models.AnalysisResult, th config.ThresholdConfig) *Report {
	return &Report{
		Title:    fmt.Sprintf("Code Metrics: %s", r.Project),
		Sections: []Renderable{SummaryTable(r), UnitsTable(r, th), DuplicatesTable(r.Duplicates), warningsTable(r.Warnings)},
		Data:     r,
	}
}

// DuplicatesReport renders only the duplicate groups of a result.
func DuplicatesReport(r *models.AnalysisResult) *Report {
	return &Report{
		Title:    fmt.Sprintf("Duplicates: %s", r.Project),
		Sections: []Renderable{DuplicatesTable(r.Duplicates)},
		Data: map[string]any{
			"project":    r.Project,
			"duplicates": r.Duplicates,
		},
	}
}

// SummaryTable lists the aggregate statistics of a run.
func SummaryTable(r *models.AnalysisResult) *Table {
	s := r.Summary
	rows := [][]string{
		{"Files", fmt.Sprint(s.TotalFiles)},
		{"Units", fmt.Sprint(s.TotalUnits)},
		{"Total lines", fmt.Sprint(s.TotalLines)},
		{"Code lines", fmt.Sprint(s.CodeLines)},
		{"Comment lines", fmt.Sprint(s.CommentLines)},
		{"Blank lines", fmt.Sprint(s.BlankLines)},
		{"Total complexity", fmt.Sprint(s.TotalCyclomatic)},
		{"Max complexity", fmt.Sprint(s.MaxCyclomatic)},
		{"Complexity p50 / p90", fmt.Sprintf("%.1f / %.1f", s.P50Cyclomatic, s.P90Cyclomatic)},
		{"Avg maintainability", fmt.Sprintf("%.1f", s.AvgMaintainability)},
		{"Duplicate groups", fmt.Sprint(s.DuplicateGroups)},
		{"Duplicate occurrences", fmt.Sprint(s.DuplicateOccurrences)},
		{"Skipped files", fmt.Sprint(s.SkippedFiles)},
		{"Reused files", fmt.Sprint(s.ReusedFiles)},
	}
	return NewTable("Summary", []string{"Metric", "Value"}, rows, nil, s)
}

// UnitsTable lists every unit sorted by file relative path, then by
// position. Units over a threshold are flagged in the status column.
func UnitsTable(r *models.AnalysisResult, th config.ThresholdConfig) *Table {
	files := make([]models.SourceFile, len(r.Files))
	copy(files, r.Files)
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	var rows [][]string
	for _, f := range files {
		if len(f.Units) == 0 {
			rows = append(rows, []string{
				f.RelativePath, "-", "-", fmt.Sprint(f.Cyclomatic), "-",
				fmt.Sprintf("%.1f", f.Maintainability), string(config.LevelOK),
			})
			continue
		}
		for _, u := range f.Units {
			rows = append(rows, []string{
				f.RelativePath,
				u.Signature,
				fmt.Sprintf("%d-%d", u.StartLine, u.EndLine),
				fmt.Sprint(u.Cyclomatic),
				fmt.Sprint(u.LinesOfCode),
				fmt.Sprintf("%.1f", u.Maintainability),
				string(worst(th.ComplexityLevel(u.Cyclomatic), th.MaintainabilityLevel(u.Maintainability))),
			})
		}
	}

	headers := []string{"File", "Unit", "Lines", "CC", "LOC", "MI", "Status"}
	return NewTable("Units", headers, rows, nil, r.Units())
}

// DuplicatesTable lists each occurrence of each duplicate group.
func DuplicatesTable(groups []models.DuplicateGroup) *Table {
	var rows [][]string
	for _, g := range groups {
		for _, o := range g.Occurrences {
			rows = append(rows, []string{
				g.Fingerprint, o.File, fmt.Sprintf("%d-%d", o.StartLine, o.EndLine), o.Preview,
			})
		}
	}
	title := fmt.Sprintf("Duplicates (%d groups)", len(groups))
	return NewTable(title, []string{"Hash", "File", "Lines", "Preview"}, rows, nil, groups)
}

func warningsTable(warnings []models.Warning) Renderable {
	if len(warnings) == 0 {
		return &Report{}
	}
	rows := make([][]string, len(warnings))
	for i, w := range warnings {
		rows[i] = []string{w.Path, w.Error}
	}
	return NewTable("Skipped files", []string{"File", "Error"}, rows, nil, warnings)
}

func worst(levels ...config.Level) config.Level {
	rank := map[config.Level]int{config.LevelOK: 0, config.LevelWarn: 1, config.LevelError: 2}
	out := config.LevelOK
	for _, l := range levels {
		if rank[l] > rank[out] {
			out = l
		}
	}
	return out
}
