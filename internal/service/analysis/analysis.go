// Package analysis runs a complete metrics analysis of a directory, either
// as it is on disk or as committed at a git revision.
package analysis

import (
	"context"
	"path/filepath"

	"github.com/panbanda/codemetrics/internal/fileproc"
	scannerSvc "github.com/panbanda/codemetrics/internal/service/scanner"
	"github.com/panbanda/codemetrics/internal/vcs"
	"github.com/panbanda/codemetrics/pkg/analyzer/pipeline"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
	"github.com/panbanda/codemetrics/pkg/source"
)

// Service orchestrates code analysis operations.
type Service struct {
	config *config.Config
	opener vcs.Opener
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// New creates a new analysis service with default config.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.NewOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Options tunes one run. Zero values fall back to the configuration.
type Options struct {
	// Ref analyses the root as committed at this git revision.
	Ref            string
	Workers        int
	MinLines       int
	MinOccurrences int
	OnProgress     fileproc.ProgressFunc
}

// Scan lists the files a run over root would analyse.
func (s *Service) Scan(root, ref string) (*scannerSvc.ScanResult, error) {
	scan := scannerSvc.New(scannerSvc.WithConfig(s.config), scannerSvc.WithOpener(s.opener))
	if ref != "" {
		return scan.ScanRevision(root, ref)
	}
	return scan.ScanRoot(root)
}

// Run analyses the files of a previous Scan.
func (s *Service) Run(ctx context.Context, scan *scannerSvc.ScanResult, opts Options) (*models.AnalysisResult, error) {
	cfg := *s.config
	if opts.Workers > 0 {
		cfg.Analysis.Workers = opts.Workers
	}
	if opts.MinLines > 0 {
		cfg.Thresholds.DuplicateMinLines = opts.MinLines
	}
	if opts.MinOccurrences > 0 {
		cfg.Thresholds.DuplicateMinOccurrences = opts.MinOccurrences
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithConfig(&cfg),
		pipeline.WithProject(filepath.Base(scan.Root)),
		pipeline.WithProgress(opts.OnProgress),
	}
	root := scan.Root
	if scan.Tree != nil {
		pipeOpts = append(pipeOpts, pipeline.WithSource(source.Tree(scan.Tree)))
		root = scan.Prefix
	}

	return pipeline.New(pipeOpts...).Run(ctx, root, scan.Files)
}

// Analyze scans root and analyses what it finds.
func (s *Service) Analyze(ctx context.Context, root string, opts Options) (*models.AnalysisResult, error) {
	scan, err := s.Scan(root, opts.Ref)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, scan, opts)
}
