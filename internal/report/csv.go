package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/codemetrics/pkg/models"
)

// CSVHeader is the first row of a CSV report.
var CSVHeader = []string{
	"Report Type", "FilePath", "RelativePath", "TotalLines", "CodeLines", "CommentLines",
	"CyclomaticComplexity", "MaintainabilityIndex", "MethodName", "MethodCC", "MethodLOC", "MethodMI",
}

// CSVDuplicatesHeader opens the duplicates section of a CSV report.
var CSVDuplicatesHeader = []string{"Duplicates", "Hash", "FilePath", "LineStart", "LineEnd", "Preview"}

// WriteCSV writes one row per unit, or one row per file without units,
// then a blank line and one row per duplicate occurrence.
func WriteCSV(w io.Writer, r *models.AnalysisResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, f := range r.Files {
		file := []string{
			"File",
			f.Path,
			f.RelativePath,
			strconv.Itoa(f.TotalLines),
			strconv.Itoa(f.CodeLines),
			strconv.Itoa(f.CommentLines),
			strconv.Itoa(f.Cyclomatic),
			decimal(f.Maintainability),
		}
		if len(f.Units) == 0 {
			if err := cw.Write(append(file, "", "", "", "")); err != nil {
				return err
			}
			continue
		}
		for _, u := range f.Units {
			row := append(file[:len(file):len(file)],
				u.Name,
				strconv.Itoa(u.Cyclomatic),
				strconv.Itoa(u.LinesOfCode),
				decimal(u.Maintainability),
			)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	if err := cw.Write(nil); err != nil {
		return err
	}
	if err := cw.Write(CSVDuplicatesHeader); err != nil {
		return err
	}
	for _, g := range r.Duplicates {
		for _, o := range g.Occurrences {
			row := []string{
				"Duplicate",
				g.Fingerprint,
				o.File,
				strconv.Itoa(o.StartLine),
				strconv.Itoa(o.EndLine),
				o.Preview,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
