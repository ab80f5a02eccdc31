// Package pipeline runs the full analysis over a set of files.
//
// Analysis happens in two stages separated by a barrier. The first stage
// reads, parses and measures every file independently on a worker pool. The
// second stage indexes the units of all files for duplicates; it only
// starts once every file of the first stage has finished.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/panbanda/codemetrics/internal/cache"
	"github.com/panbanda/codemetrics/internal/fileproc"
	"github.com/panbanda/codemetrics/pkg/analyzer/duplicates"
	"github.com/panbanda/codemetrics/pkg/analyzer/lines"
	"github.com/panbanda/codemetrics/pkg/analyzer/maintainability"
	"github.com/panbanda/codemetrics/pkg/analyzer/units"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
	"github.com/panbanda/codemetrics/pkg/parser"
	"github.com/panbanda/codemetrics/pkg/source"
	"github.com/panbanda/codemetrics/pkg/stats"
	"github.com/panbanda/codemetrics/pkg/syntax"
)

// measured is the content-dependent part of a SourceFile, shared between
// byte-identical files of the same language.
type measured struct {
	language string
	counts   lines.Counts
	units    []models.UnitMetrics
}

// Pipeline analyses files and assembles an AnalysisResult.
type Pipeline struct {
	source     source.Reader
	builder    *units.Builder
	workers    int
	duplicates duplicates.Config
	memoize    bool
	project    string
	onProgress fileproc.ProgressFunc
	now        func() time.Time
}

// Option is a functional option for configuring Pipeline.
type Option func(*Pipeline)

// WithConfig applies worker, threshold and cache settings.
func WithConfig(cfg *config.Config) Option {
	return func(p *Pipeline) {
		p.workers = cfg.Analysis.Workers
		p.memoize = cfg.Cache.Enabled
		p.duplicates = duplicates.Config{
			MinLines:       cfg.Thresholds.DuplicateMinLines,
			MinOccurrences: cfg.Thresholds.DuplicateMinOccurrences,
			MinFiles:       cfg.Thresholds.DuplicateMinFiles,
		}
	}
}

// WithSource sets where file content is read from.
func WithSource(src source.Reader) Option {
	return func(p *Pipeline) {
		p.source = src
	}
}

// WithWorkers bounds the per-file stage; 0 means 2x NumCPU.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithProject sets the project label; it defaults to the root's base name.
func WithProject(label string) Option {
	return func(p *Pipeline) {
		p.project = label
	}
}

// WithProgress sets a callback invoked once per file of the first stage.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(p *Pipeline) {
		p.onProgress = fn
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a pipeline reading from the filesystem with default settings.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source.Filesystem,
		builder:    units.New(),
		duplicates: duplicates.DefaultConfig(),
		memoize:    true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run analyses files found under root. Files that cannot be read or parsed
// are skipped and listed in the result's warnings. Cancelling ctx before
// the duplicate stage returns the context error.
func (p *Pipeline) Run(ctx context.Context, root string, files []string) (*models.AnalysisResult, error) {
	started := p.now().UTC()

	sourceFiles, warnings, reused := p.AnalyzeFiles(ctx, root, files)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	groups := FindDuplicates(sourceFiles, p.duplicates)

	project := p.project
	if project == "" {
		project = filepath.Base(filepath.Clean(root))
	}
	summary := Summarize(sourceFiles, groups, len(warnings))
	summary.ReusedFiles = reused
	return &models.AnalysisResult{
		Project:    project,
		AnalyzedAt: started,
		Files:      sourceFiles,
		Duplicates: groups,
		Summary:    summary,
		Warnings:   warnings,
	}, nil
}

// AnalyzeFiles runs the per-file stage. Results keep the order of files.
// reused counts analysed files whose content repeats an earlier analysed
// file of the run; it is 0 when the memo is disabled. It depends only on
// the input, not on which worker reached the memo first.
func (p *Pipeline) AnalyzeFiles(ctx context.Context, root string, files []string) (results []models.SourceFile, warnings []models.Warning, reused int) {
	var memo *cache.Memo[measured]
	if p.memoize {
		memo = cache.NewMemo[measured]()
	}

	keyed, failed := fileproc.MapFiles(ctx, files, p.workers, func(psr *parser.Parser, path string) (keyedFile, error) {
		return p.analyzeFile(psr, memo, root, path)
	}, p.onProgress)

	results = make([]models.SourceFile, 0, len(keyed))
	seen := make(map[string]bool, len(keyed))
	for _, k := range keyed {
		results = append(results, k.file)
		if seen[k.key] {
			reused++
		}
		seen[k.key] = true
	}
	if memo == nil {
		reused = 0
	}
	return results, warningsFrom(failed), reused
}

// keyedFile is a measured file with the memo key of its content.
type keyedFile struct {
	file models.SourceFile
	key  string
}

func (p *Pipeline) analyzeFile(psr *parser.Parser, memo *cache.Memo[measured], root, path string) (keyedFile, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return keyedFile{}, fmt.Errorf("%w: %s", parser.ErrUnsupportedLanguage, filepath.Ext(path))
	}

	content, err := p.source.Read(path)
	if err != nil {
		return keyedFile{}, fmt.Errorf("failed to read: %w", err)
	}

	key := cache.Key(lang.String(), content)
	m, ok := memo.Get(key)
	if !ok {
		parsed, err := psr.Parse(content, lang, path)
		if err != nil {
			return keyedFile{}, err
		}
		sf := BuildSourceFile(p.builder, parsed, string(content), root)
		m = measured{language: sf.Language, counts: countsOf(sf), units: sf.Units}
		memo.Put(key, m)
	}

	sf := models.SourceFile{
		Path:         path,
		RelativePath: relativePath(root, path),
		Language:     m.language,
		TotalLines:   m.counts.Total,
		CodeLines:    m.counts.Code,
		CommentLines: m.counts.Comment,
		Units:        slices.Clone(m.units),
	}
	sf.Cyclomatic, sf.Maintainability = units.Aggregate(sf.Units)
	return keyedFile{file: sf, key: key}, nil
}

// BuildSourceFile measures one parsed file: line counts from its text and
// unit metrics from its syntax tree.
func BuildSourceFile(b *units.Builder, f *syntax.File, text, root string) models.SourceFile {
	sf := b.File(f, lines.Classify(text))
	sf.RelativePath = relativePath(root, f.Path)
	return sf
}

// FindDuplicates runs the duplicate stage over the complete set of files.
func FindDuplicates(files []models.SourceFile, cfg duplicates.Config) []models.DuplicateGroup {
	return duplicates.Find(files, duplicates.WithConfig(cfg))
}

// Summarize computes run-wide statistics.
func Summarize(files []models.SourceFile, groups []models.DuplicateGroup, skipped int) models.Summary {
	s := models.Summary{
		TotalFiles:      len(files),
		DuplicateGroups: len(groups),
		SkippedFiles:    skipped,
	}

	var cc []int
	var mi []float64
	for _, f := range files {
		s.TotalLines += f.TotalLines
		s.CodeLines += f.CodeLines
		s.CommentLines += f.CommentLines
		s.BlankLines += f.BlankLines()
		s.TotalCyclomatic += f.Cyclomatic
		for _, u := range f.Units {
			cc = append(cc, u.Cyclomatic)
			mi = append(mi, u.Maintainability)
		}
	}
	for _, g := range groups {
		s.DuplicateOccurrences += len(g.Occurrences)
	}

	s.TotalUnits = len(cc)
	ccStats := stats.Describe(stats.Ints(cc))
	s.MaxCyclomatic = int(ccStats.Max)
	s.P50Cyclomatic = ccStats.P50
	s.P90Cyclomatic = ccStats.P90
	s.AvgMaintainability = maintainability.Mean(mi)
	return s
}

func countsOf(sf models.SourceFile) lines.Counts {
	return lines.Counts{Total: sf.TotalLines, Code: sf.CodeLines, Comment: sf.CommentLines}
}

func relativePath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func warningsFrom(failed fileproc.Failures) []models.Warning {
	if len(failed) == 0 {
		return nil
	}
	warnings := make([]models.Warning, 0, len(failed))
	for _, e := range failed {
		warnings = append(warnings, models.Warning{Path: e.Path, Error: e.Err.Error()})
	}
	return warnings
}
