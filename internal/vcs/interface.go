// Package vcs reads the files of a git revision without touching the
// working tree.
package vcs

// Opener finds the git repository enclosing a path.
type Opener interface {
	// Open opens the repository containing path, searching parent
	// directories for .git.
	Open(path string) (Repository, error)
}

// Repository is an opened git repository.
type Repository interface {
	// Root is the top directory of the working tree.
	Root() string
	// Tree returns the files of the commit revision resolves to. Any
	// commit-ish git rev-parse accepts works: branch and tag names,
	// hashes, HEAD~2.
	Tree(revision string) (Tree, error)
}

// TreeEntry is a file of a Tree.
type TreeEntry struct {
	// Path is slash-separated and relative to the repository root.
	Path string
	Size int64
}

// Tree is the file snapshot of one commit.
type Tree interface {
	// Entries lists every file, recursively.
	Entries() ([]TreeEntry, error)
	// File returns the content of the file at the repository-relative path.
	File(path string) ([]byte, error)
}
