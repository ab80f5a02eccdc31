// Package testutil holds fixtures and helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// CreateFileTree creates multiple files from a map of path -> content and
// returns their absolute paths in lexical order.
func CreateFileTree(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	paths := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(root, name)
		WriteFile(t, path, content)
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// InitRepo creates a git repository in root and commits files in one
// commit. It returns the repository for further commits.
func InitRepo(t *testing.T, root string, files map[string]string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("PlainInit(%s) error: %v", root, err)
	}
	Commit(t, repo, root, files, "initial")
	return repo
}

// Commit writes files into the worktree at root and commits them.
func Commit(t *testing.T, repo *git.Repository, root string, files map[string]string, msg string) {
	t.Helper()
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree error: %v", err)
	}
	for name, content := range files {
		WriteFile(t, filepath.Join(root, name), content)
		if _, err := w.Add(filepath.ToSlash(name)); err != nil {
			t.Fatalf("Add(%s) error: %v", name, err)
		}
	}
	_, err = w.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
}

// JavaProcessor is a Java class whose process method body spans nine lines
// with complexity 3. Copies of it in different files form a duplicate group.
const JavaProcessor = `package demo;

public class %s {
    public int process(int value) {
        int result = 0;
        if (value > 10) {
            result = value * 2;
        } else if (value > 5) {
            result = value + 1;
        }
        return result;
    }
}
`

// JavaSmall is a Java class with a single one-line method.
const JavaSmall = `class Small {
    int get() { return 1; }
}
`

// JavaBroken does not parse.
const JavaBroken = `public class Broken {
    void f( {
}
`

// CSharpAccount is a C# class with a method and a constructor.
const CSharpAccount = `namespace Bank
{
    // Account keeps a balance.
    public class Account
    {
        private int balance;

        public Account(int start)
        {
            balance = start;
        }

        public bool Withdraw(int amount)
        {
            if (amount <= 0 || amount > balance)
            {
                return false;
            }
            balance -= amount;
            return true;
        }
    }
}
`
