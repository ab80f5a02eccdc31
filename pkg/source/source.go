// Package source abstracts where file content is read from: the working
// tree, a git revision, or memory.
package source

import (
	"os"
	"sync"

	"github.com/panbanda/codemetrics/internal/vcs"
)

// Reader returns the content of the file at path.
type Reader interface {
	Read(path string) ([]byte, error)
}

// ReadFunc adapts a function to a Reader.
type ReadFunc func(path string) ([]byte, error)

func (f ReadFunc) Read(path string) ([]byte, error) { return f(path) }

// Filesystem reads absolute paths from disk.
var Filesystem Reader = ReadFunc(os.ReadFile)

// Tree reads slash-separated, repository-relative paths from a git tree.
// go-git object storage is not safe for concurrent reads, so calls are
// serialized.
func Tree(tree vcs.Tree) Reader {
	var mu sync.Mutex
	return ReadFunc(func(path string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		return tree.File(path)
	})
}

// Map serves content from memory, keyed by path.
type Map map[string][]byte

func (m Map) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, &os.PathError{Op: "read", Path: path, Err: os.ErrNotExist}
	}
	return content, nil
}
