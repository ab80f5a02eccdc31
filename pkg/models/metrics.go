package models

// UnitKind distinguishes functions, methods and constructors.
type UnitKind string

const (
	UnitFunction    UnitKind = "function"
	UnitMethod      UnitKind = "method"
	UnitConstructor UnitKind = "constructor"
	UnitDestructor  UnitKind = "destructor"
)

// UnitMetrics holds the metrics of one function, method or constructor.
type UnitMetrics struct {
	Name string   `json:"name"`
	Kind UnitKind `json:"kind"`
	// Signature is at most 80 characters, ellipsis-terminated when cut.
	Signature       string  `json:"signature"`
	StartLine       int     `json:"start_line"`
	EndLine         int     `json:"end_line"`
	Cyclomatic      int     `json:"cyclomatic"`
	LinesOfCode     int     `json:"lines_of_code"`
	Maintainability float64 `json:"maintainability"`
}

// SourceFile holds the metrics of one successfully parsed file.
type SourceFile struct {
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Language     string `json:"language"`
	TotalLines   int    `json:"total_lines"`
	CodeLines    int    `json:"code_lines"`
	CommentLines int    `json:"comment_lines"`
	// Cyclomatic is the sum over units, 0 with no units.
	Cyclomatic int `json:"cyclomatic"`
	// Maintainability is the mean over units, 100 with no units.
	Maintainability float64       `json:"maintainability"`
	Units           []UnitMetrics `json:"units"`
}

// BlankLines returns the lines that are neither code nor comment.
func (f *SourceFile) BlankLines() int {
	return f.TotalLines - f.CodeLines - f.CommentLines
}
