package models

import "time"

// Warning records a file that was skipped during analysis.
type Warning struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary provides aggregate statistics over an analysis run.
type Summary struct {
	TotalFiles           int     `json:"total_files"`
	TotalUnits           int     `json:"total_units"`
	TotalLines           int     `json:"total_lines"`
	CodeLines            int     `json:"code_lines"`
	CommentLines         int     `json:"comment_lines"`
	BlankLines           int     `json:"blank_lines"`
	TotalCyclomatic      int     `json:"total_cyclomatic"`
	AvgMaintainability   float64 `json:"avg_maintainability"`
	MaxCyclomatic        int     `json:"max_cyclomatic"`
	P50Cyclomatic        float64 `json:"p50_cyclomatic"`
	P90Cyclomatic        float64 `json:"p90_cyclomatic"`
	DuplicateGroups      int     `json:"duplicate_groups"`
	DuplicateOccurrences int     `json:"duplicate_occurrences"`
	SkippedFiles         int     `json:"skipped_files"`
	// ReusedFiles were byte-identical to an earlier file of the run and
	// were not parsed again.
	ReusedFiles int `json:"reused_files"`
}

// AnalysisResult is the complete output of one analysis run.
type AnalysisResult struct {
	Project    string           `json:"project"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
	Files      []SourceFile     `json:"files"`
	Duplicates []DuplicateGroup `json:"duplicates"`
	Summary    Summary          `json:"summary"`
	Warnings   []Warning        `json:"warnings,omitempty"`
}

// Units returns every unit of every file in file order.
func (r *AnalysisResult) Units() []UnitMetrics {
	var units []UnitMetrics
	for _, f := range r.Files {
		units = append(units, f.Units...)
	}
	return units
}
