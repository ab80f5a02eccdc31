// Package remote resolves repository references such as owner/repo@ref to
// temporary clones that the revision scanner can read.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // clone directory, set by Clone

	tmp string
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	url, ref := splitRef(path)
	switch {
	case hasScheme(url):
	case hasHost(url):
		url = "https://" + url
	case isGitHubShorthand(url):
		url = "https://github.com/" + url
	default:
		return nil, nil
	}
	if strings.HasSuffix(path, "@") {
		return nil, fmt.Errorf("empty ref in %q", path)
	}

	return &Source{URL: url, Ref: ref}, nil
}

// splitRef cuts a trailing @ref. The user part of an SSH URL is kept.
func splitRef(path string) (string, string) {
	start := 0
	if strings.HasPrefix(path, "git@") {
		start = len("git@")
	}
	if i := strings.LastIndex(path[start:], "@"); i != -1 {
		i += start
		return path[:i], path[i+1:]
	}
	return path, ""
}

func hasScheme(url string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git@"} {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// hasHost reports host/owner/repo forms such as github.com/golang/go.
func hasHost(url string) bool {
	host, _, ok := strings.Cut(url, "/")
	return ok && strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && strings.Count(url, "/") >= 2
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	// Must have exactly one slash
	if strings.Count(path, "/") != 1 {
		return false
	}
	// No dots before the slash (would indicate a domain)
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	// Both parts must be non-empty
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Name is the repository name, the last URL segment without ".git".
func (s *Source) Name() string {
	url := strings.TrimSuffix(strings.TrimRight(s.URL, "/"), ".git")
	if i := strings.LastIndexAny(url, "/:"); i != -1 {
		url = url[i+1:]
	}
	if url == "" {
		return "repo"
	}
	return url
}

// Clone fetches the repository into a temporary directory named after it.
// Nothing is checked out: files are read from the revision, so Ref (or
// HEAD) is resolved later. A shallow clone only fetches the tip of the
// default branch and is ignored when Ref is set.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	base, err := os.MkdirTemp("", "codemetrics-clone-")
	if err != nil {
		return fmt.Errorf("create clone directory: %w", err)
	}
	dir := filepath.Join(base, s.Name())

	opts := &git.CloneOptions{
		URL:        s.URL,
		Progress:   progress,
		NoCheckout: true,
	}
	if shallow && s.Ref == "" {
		opts.Depth = 1
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		os.RemoveAll(base)
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}

	s.tmp = base
	s.CloneDir = dir
	return nil
}

// Revision returns the ref to analyze: Ref, or HEAD when it is empty.
func (s *Source) Revision() string {
	if s.Ref == "" {
		return "HEAD"
	}
	return s.Ref
}

// Cleanup removes the clone.
func (s *Source) Cleanup() error {
	if s.tmp == "" {
		return nil
	}
	err := os.RemoveAll(s.tmp)
	s.tmp, s.CloneDir = "", ""
	return err
}
