package scanner

import (
	"errors"
	"fmt"
)

// ErrNotDirectory is wrapped by PathError when the root is a file.
var ErrNotDirectory = errors.New("not a directory")

// PathError reports an analysis root that cannot be used.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// ScanError reports a failure while listing the files of a root.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// GitError reports a revision scan of a root outside any git repository.
type GitError struct {
	Root string
	Err  error
}

func (e *GitError) Error() string {
	return fmt.Sprintf("%s is not inside a git repository: %v", e.Root, e.Err)
}

func (e *GitError) Unwrap() error { return e.Err }

// RevisionError reports a ref that does not resolve to a commit.
type RevisionError struct {
	Ref string
	Err error
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("unknown revision %q: %v", e.Ref, e.Err)
}

func (e *RevisionError) Unwrap() error { return e.Err }
