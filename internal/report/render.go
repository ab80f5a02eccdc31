// Package report renders an analysis result as a standalone HTML page or
// a CSV file.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed template.html
var templateFS embed.FS

// DefaultBaseName is the file name, without extension, of a report
// written into the analysed root.
const DefaultBaseName = "code-metrics-report"

// DefaultPath returns root/code-metrics-report.<format>.
func DefaultPath(root, format string) string {
	return filepath.Join(root, DefaultBaseName+"."+format)
}

// RenderData is the view model of the HTML template.
type RenderData struct {
	Project     string
	GeneratedAt string
	Summary     models.Summary
	Files       []models.SourceFile
	Duplicates  []models.DuplicateGroup
	Warnings    []models.Warning
}

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a renderer with the embedded template. Cells are
// classed good, warn or bad against th.
func NewRenderer(th config.ThresholdConfig) (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"ccClass": func(cc int) string {
			return string(th.ComplexityLevel(cc))
		},
		"miClass": func(mi float64) string {
			return string(th.MaintainabilityLevel(mi))
		},
		"title": cases.Title(language.English).String,
		"num": func(n int) string {
			return printer.Sprintf("%d", n)
		},
		"fixed": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		"locations": func(g models.DuplicateGroup) string {
			parts := make([]string, len(g.Occurrences))
			for i, o := range g.Occurrences {
				parts[i] = fmt.Sprintf("%s L%d-%d", o.File, o.StartLine, o.EndLine)
			}
			return strings.Join(parts, "; ")
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the HTML report of r to w. Files are listed by relative
// path.
func (r *Renderer) Render(result *models.AnalysisResult, w io.Writer) error {
	files := make([]models.SourceFile, len(result.Files))
	copy(files, result.Files)
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	data := RenderData{
		Project:     result.Project,
		GeneratedAt: result.AnalyzedAt.Format("2006-01-02 15:04:05"),
		Summary:     result.Summary,
		Files:       files,
		Duplicates:  result.Duplicates,
		Warnings:    result.Warnings,
	}
	return r.tmpl.Execute(w, data)
}

// RenderToFile writes the HTML report to outputPath.
func (r *Renderer) RenderToFile(result *models.AnalysisResult, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.Render(result, f)
}

// WriteFile renders result in format ("html" or "csv") to path.
func WriteFile(result *models.AnalysisResult, format, path string, th config.ThresholdConfig) error {
	switch format {
	case "html":
		r, err := NewRenderer(th)
		if err != nil {
			return err
		}
		return r.RenderToFile(result, path)
	case "csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(f, result); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}
