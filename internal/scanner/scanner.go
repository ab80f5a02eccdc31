// Package scanner enumerates the source files under an analysis root.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/codemetrics/internal/vcs"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/parser"
)

// matcher applies gitignore patterns to paths relative to base.
type matcher struct {
	base string
	m    gitignore.Matcher
}

// Scanner selects the analyzable files of a directory or git tree.
type Scanner struct {
	config   *config.Config
	matchers []matcher
	skipped  int
}

// NewScanner returns a Scanner for cfg, or for the defaults when cfg is nil.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot returns the nearest directory at or above start holding a
// .git entry, or "" outside a repository. A .git file marks a linked
// worktree.
func findGitRoot(start string) string {
	for dir := start; ; {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		up := filepath.Dir(dir)
		if up == dir {
			return ""
		}
		dir = up
	}
}

// loadExcludePatterns builds matchers from config patterns (relative to
// root) and, when enabled, every .gitignore of the enclosing repository
// (relative to the repository root).
func (s *Scanner) loadExcludePatterns(root string) {
	s.matchers = nil

	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	if len(patterns) > 0 {
		s.matchers = append(s.matchers, matcher{base: root, m: gitignore.NewMatcher(patterns)})
	}

	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(root)
	if gitRoot == "" {
		return
	}
	gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err == nil && len(gitPatterns) > 0 {
		s.matchers = append(s.matchers, matcher{base: gitRoot, m: gitignore.NewMatcher(gitPatterns)})
	}
}

// isExcluded checks if an absolute path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	for _, m := range s.matchers {
		rel, err := filepath.Rel(m.base, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if m.m.Match(strings.Split(rel, string(filepath.Separator)), isDir) {
			return true
		}
	}
	return false
}

// accepts reports whether a file is a supported, selected source file.
// rel is its slash-separated path relative to the scan root.
func (s *Scanner) accepts(path, rel string) bool {
	lang := parser.DetectLanguage(path)
	return lang != parser.LangUnknown && s.config.IncludesLanguage(lang.String()) && s.config.IncludesPath(rel)
}

// Skipped returns how many files the last scan dropped for exceeding the
// size limit.
func (s *Scanner) Skipped() int {
	return s.skipped
}

// ScanDir recursively scans a directory for source files and returns their
// absolute paths in lexical order. Excluded directories (build output,
// vendored code) are not descended into.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		// Symlinks may only point inside the root.
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.config.ExcludesDir(d.Name()) || s.isExcluded(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(path, false) {
			return nil
		}
		if rel, err := filepath.Rel(absRoot, path); err == nil && s.accepts(path, filepath.ToSlash(rel)) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	files, s.skipped = FilterBySize(files, s.config.Analysis.MaxFileSize)
	sort.Strings(files)
	return files, nil
}

// ScanTree selects the source files of a git tree that lie under prefix
// (slash-separated, relative to the repository root; "" for the whole
// tree). Directory and pattern exclusions apply as in ScanDir; .gitignore
// is not consulted because ignored files are not committed.
func (s *Scanner) ScanTree(entries []vcs.TreeEntry, prefix string) []string {
	prefix = strings.Trim(prefix, "/")
	var patterns gitignore.Matcher
	if len(s.config.Exclude.Patterns) > 0 {
		ps := make([]gitignore.Pattern, 0, len(s.config.Exclude.Patterns))
		for _, p := range s.config.Exclude.Patterns {
			ps = append(ps, gitignore.ParsePattern(p, nil))
		}
		patterns = gitignore.NewMatcher(ps)
	}

	s.skipped = 0
	var files []string
	for _, e := range entries {
		rel := e.Path
		if prefix != "" {
			if !strings.HasPrefix(e.Path, prefix+"/") {
				continue
			}
			rel = strings.TrimPrefix(e.Path, prefix+"/")
		}
		parts := strings.Split(rel, "/")
		if slices.ContainsFunc(parts[:len(parts)-1], s.config.ExcludesDir) {
			continue
		}
		if patterns != nil && patterns.Match(parts, false) {
			continue
		}
		if !s.accepts(e.Path, rel) {
			continue
		}
		if s.config.Analysis.MaxFileSize > 0 && e.Size > s.config.Analysis.MaxFileSize {
			s.skipped++
			continue
		}
		files = append(files, e.Path)
	}
	sort.Strings(files)
	return files
}

// isWithinRoot reports whether path is root or lies below it.
func isWithinRoot(path, root string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// GroupByLanguage buckets files by language. Unsupported files are left out.
func GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, path := range files {
		if lang := parser.DetectLanguage(path); lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], path)
		}
	}
	return groups
}

// FilterBySize drops files larger than maxSize bytes, or that cannot be
// stat'ed, and returns the rest with the number dropped. A maxSize <= 0
// keeps everything.
func FilterBySize(files []string, maxSize int64) (kept []string, dropped int) {
	if maxSize <= 0 {
		return files, 0
	}
	kept = make([]string, 0, len(files))
	for _, path := range files {
		if info, err := os.Stat(path); err == nil && info.Size() <= maxSize {
			kept = append(kept, path)
			continue
		}
		dropped++
	}
	return kept, dropped
}
