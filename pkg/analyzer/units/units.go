// Package units builds per-unit metrics records and aggregates them into
// per-file totals.
package units

import (
	"github.com/panbanda/codemetrics/pkg/analyzer/complexity"
	"github.com/panbanda/codemetrics/pkg/analyzer/lines"
	"github.com/panbanda/codemetrics/pkg/analyzer/maintainability"
	"github.com/panbanda/codemetrics/pkg/models"
	"github.com/panbanda/codemetrics/pkg/syntax"
)

const (
	// MaxSignatureLen is the longest signature kept on a unit record.
	MaxSignatureLen = 80
	ellipsis        = "..."
)

// Builder turns parsed units into metrics records.
type Builder struct {
	complexity *complexity.Analyzer
}

// New creates a builder with the default complexity weights.
func New() *Builder {
	return &Builder{complexity: complexity.New()}
}

// Unit computes the metrics of a single unit.
func (b *Builder) Unit(u syntax.Unit) models.UnitMetrics {
	cc := b.complexity.Cyclomatic(u.Body)
	loc := LinesOfCode(u.Body)

	m := models.UnitMetrics{
		Name:            u.Name,
		Kind:            models.UnitKind(u.Kind),
		Signature:       TruncateSignature(u.Signature),
		Cyclomatic:      cc,
		LinesOfCode:     loc,
		Maintainability: maintainability.Score(cc, loc),
	}
	if u.HasRange {
		m.StartLine = u.StartLine
		m.EndLine = u.EndLine
	}
	return m
}

// File computes every unit of f in declaration order and aggregates the
// file totals. RelativePath is left for the caller.
func (b *Builder) File(f *syntax.File, counts lines.Counts) models.SourceFile {
	sf := models.SourceFile{
		Path:         f.Path,
		Language:     f.Language,
		TotalLines:   counts.Total,
		CodeLines:    counts.Code,
		CommentLines: counts.Comment,
	}

	parsed := f.Units()
	sf.Units = make([]models.UnitMetrics, 0, len(parsed))
	for _, u := range parsed {
		sf.Units = append(sf.Units, b.Unit(u))
	}
	sf.Cyclomatic, sf.Maintainability = Aggregate(sf.Units)
	return sf
}

// Aggregate returns the complexity sum and mean maintainability of units.
// With no units the sum is 0 and the mean is 100.
func Aggregate(units []models.UnitMetrics) (int, float64) {
	total := 0
	scores := make([]float64, 0, len(units))
	for _, u := range units {
		total += u.Cyclomatic
		scores = append(scores, u.Maintainability)
	}
	return total, maintainability.Mean(scores)
}

// LinesOfCode returns the inclusive line span of body, at least 1, or 0
// when there is no body.
func LinesOfCode(body *syntax.Node) int {
	if body == nil {
		return 0
	}
	return max(1, body.EndLine-body.StartLine+1)
}

// TruncateSignature cuts s to MaxSignatureLen characters, ending in an
// ellipsis when anything was removed.
func TruncateSignature(s string) string {
	r := []rune(s)
	if len(r) <= MaxSignatureLen {
		return s
	}
	return string(r[:MaxSignatureLen-len(ellipsis)]) + ellipsis
}
