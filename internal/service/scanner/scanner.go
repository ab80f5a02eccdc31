// Package scanner resolves an analysis root, or a git revision of it, to
// the list of files a run should analyse.
package scanner

import (
	"os"
	"path/filepath"

	"github.com/panbanda/codemetrics/internal/scanner"
	"github.com/panbanda/codemetrics/internal/vcs"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/parser"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	// Root is the absolute analysis root.
	Root string
	// Files are absolute paths for working-tree scans and slash-separated
	// repository-relative paths for revision scans.
	Files          []string
	LanguageGroups map[parser.Language][]string
	// Skipped counts files dropped by the size limit.
	Skipped int

	// Tree and Prefix are set for revision scans. Prefix is the root
	// relative to the repository root.
	Tree   vcs.Tree
	Prefix string
}

// Service provides file scanning functionality.
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

// New creates a new scanner service with default config.
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

// ScanRoot lists the source files under root in the working tree.
func (s *Service) ScanRoot(root string) (*ScanResult, error) {
	abs, err := checkRoot(root)
	if err != nil {
		return nil, err
	}

	sc := scanner.NewScanner(s.config)
	files, err := sc.ScanDir(abs)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}

	return &ScanResult{
		Root:           abs,
		Files:          files,
		LanguageGroups: scanner.GroupByLanguage(files),
		Skipped:        sc.Skipped(),
	}, nil
}

// ScanRevision lists the source files under root as committed at ref in
// the enclosing git repository.
func (s *Service) ScanRevision(root, ref string) (*ScanResult, error) {
	abs, err := checkRoot(root)
	if err != nil {
		return nil, err
	}

	repo, err := s.opener.Open(abs)
	if err != nil {
		return nil, &GitError{Root: abs, Err: err}
	}
	tree, err := repo.Tree(ref)
	if err != nil {
		return nil, &RevisionError{Ref: ref, Err: err}
	}
	entries, err := tree.Entries()
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}

	prefix, err := filepath.Rel(repo.Root(), abs)
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}
	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	}

	sc := scanner.NewScanner(s.config)
	files := sc.ScanTree(entries, prefix)
	return &ScanResult{
		Root:           abs,
		Files:          files,
		LanguageGroups: scanner.GroupByLanguage(files),
		Skipped:        sc.Skipped(),
		Tree:           tree,
		Prefix:         prefix,
	}, nil
}

// checkRoot returns the absolute, symlink-free form of root, which must be
// a directory.
func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &PathError{Path: root, Err: err}
	}
	if abs, err = filepath.EvalSymlinks(abs); err != nil {
		return "", &PathError{Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &PathError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return "", &PathError{Path: root, Err: ErrNotDirectory}
	}
	return abs, nil
}
