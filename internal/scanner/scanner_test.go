package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/panbanda/codemetrics/internal/vcs"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/parser"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	root, _ = filepath.EvalSymlinks(root)
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel(%s): %v", f, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil)
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}

	cfg := config.DefaultConfig()
	if NewScanner(cfg).config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"src/Main.java":      "class Main {}\n",
		"src/util/Help.java": "class Help {}\n",
		"App/Program.cs":     "class Program {}\n",
		"tools/gen.go":       "package tools\n",
		"README.md":          "# readme\n",
		"script.py":          "print(1)\n",
	})

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	want := []string{"App/Program.cs", "src/Main.java", "src/util/Help.java", "tools/gen.go"}
	got := relPaths(t, tmpDir, result)
	if len(got) != len(want) {
		t.Fatalf("ScanDir() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanDir()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if !sort.StringsAreSorted(result) {
		t.Error("ScanDir() results should be sorted")
	}
	for _, f := range result {
		if !filepath.IsAbs(f) {
			t.Errorf("ScanDir() returned relative path %s", f)
		}
	}
}

func TestScanDirExcludesBuildOutput(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"Main.java":                 "class Main {}\n",
		"target/classes/Gen.java":   "class Gen {}\n",
		"build/Gen.java":            "class Gen {}\n",
		"App/bin/Debug/Gen.cs":      "class Gen {}\n",
		"App/obj/Gen.cs":            "class Gen {}\n",
		"vendor/lib/lib.go":         "package lib\n",
		"node_modules/x/Index.java": "class Index {}\n",
		"notbuild/Keep.java":        "class Keep {}\n",
	})

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	got := relPaths(t, tmpDir, result)
	if len(got) != 2 || got[0] != "Main.java" || got[1] != "notbuild/Keep.java" {
		t.Errorf("ScanDir() = %v, want [Main.java notbuild/Keep.java]", got)
	}
}

func TestScanDirExcludesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"Main.java":          "class Main {}\n",
		"Form.Designer.cs":   "class Form {}\n",
		"gen/Generated.java": "class Generated {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"*.Designer.cs", "gen/"}

	result, err := NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relPaths(t, tmpDir, result)
	if len(got) != 1 || got[0] != "Main.java" {
		t.Errorf("ScanDir() = %v, want [Main.java]", got)
	}
}

func TestScanDirLanguageFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"A.java": "class A {}\n",
		"B.cs":   "class B {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Analysis.Languages = []string{"csharp"}

	result, err := NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relPaths(t, tmpDir, result); len(got) != 1 || got[0] != "B.cs" {
		t.Errorf("ScanDir() = %v, want [B.cs]", got)
	}
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTree(t, tmpDir, map[string]string{
		".gitignore":       "skipme/\n*.g.cs\n",
		"Main.java":        "class Main {}\n",
		"skipme/Skip.java": "class Skip {}\n",
		"App/Model.g.cs":   "class Model {}\n",
		"App/Model.cs":     "class Model {}\n",
	})

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relPaths(t, tmpDir, result)
	if len(got) != 2 || got[0] != "App/Model.cs" || got[1] != "Main.java" {
		t.Errorf("ScanDir() = %v, want [App/Model.cs Main.java]", got)
	}
}

func TestScanDirDisabledGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTree(t, tmpDir, map[string]string{
		".gitignore":        "ignored/\n",
		"ignored/File.java": "class File {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false

	result, err := NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 1 {
		t.Error("With gitignore disabled, should find files in 'ignored' directory")
	}
}

func TestScanDirEmptyDirectory(t *testing.T) {
	result, err := NewScanner(nil).ScanDir(t.TempDir())
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ScanDir() on empty dir = %v", result)
	}
}

func TestScanDirMissingRoot(t *testing.T) {
	if _, err := NewScanner(nil).ScanDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ScanDir() should fail for a missing root")
	}
}

func TestScanDirMaxFileSize(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"Small.java": "class S {}\n",
		"Large.java": "class L { int a; int b; int c; int d; int e; }\n",
	})

	cfg := config.DefaultConfig()
	cfg.Analysis.MaxFileSize = 20

	s := NewScanner(cfg)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relPaths(t, tmpDir, result); len(got) != 1 || got[0] != "Small.java" {
		t.Errorf("ScanDir() = %v, want [Small.java]", got)
	}
	if s.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", s.Skipped())
	}
}

func TestScanDirIncludeGlobs(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"src/main/App.java":     "class App {}\n",
		"src/main/svc/Svc.java": "class Svc {}\n",
		"src/test/AppTest.java": "class AppTest {}\n",
		"Program.cs":            "class Program {}\n",
	})

	cfg := config.DefaultConfig()
	cfg.Analysis.Include = []string{"src/main/**"}

	result, err := NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relPaths(t, tmpDir, result)
	want := []string{"src/main/App.java", "src/main/svc/Svc.java"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ScanDir() = %v, want %v", got, want)
	}

	tree := NewScanner(cfg).ScanTree([]vcs.TreeEntry{
		{Path: "repo/src/main/A.java", Size: 1},
		{Path: "repo/src/test/B.java", Size: 1},
	}, "repo")
	if len(tree) != 1 || tree[0] != "repo/src/main/A.java" {
		t.Errorf("ScanTree() = %v, want [repo/src/main/A.java]", tree)
	}
}

func TestGroupByLanguage(t *testing.T) {
	groups := GroupByLanguage([]string{"A.java", "B.cs", "C.java", "d.txt", "e.go"})

	if len(groups[parser.LangJava]) != 2 {
		t.Errorf("java group = %v", groups[parser.LangJava])
	}
	if len(groups[parser.LangCSharp]) != 1 || len(groups[parser.LangGo]) != 1 {
		t.Errorf("groups = %v", groups)
	}
	if _, ok := groups[parser.LangUnknown]; ok {
		t.Error("unknown files should not be grouped")
	}
}

func TestFilterBySize(t *testing.T) {
	tmpDir := t.TempDir()
	small := filepath.Join(tmpDir, "s.java")
	large := filepath.Join(tmpDir, "l.java")
	if err := os.WriteFile(small, make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(large, make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}

	files := []string{small, large, filepath.Join(tmpDir, "missing.java")}
	got, skipped := FilterBySize(files, 50)
	if len(got) != 1 || got[0] != small || skipped != 2 {
		t.Errorf("FilterBySize() = %v, %d", got, skipped)
	}

	got, skipped = FilterBySize(files, 0)
	if len(got) != 3 || skipped != 0 {
		t.Errorf("FilterBySize(0) should be a no-op, got %v, %d", got, skipped)
	}
}

func TestIsWithinRoot(t *testing.T) {
	tests := []struct {
		path, root string
		want       bool
	}{
		{"/a/b/c", "/a/b", true},
		{"/a/b", "/a/b", true},
		{"/a/bc", "/a/b", false},
		{"/x/y", "/a/b", false},
	}
	for _, tt := range tests {
		if got := isWithinRoot(tt.path, tt.root); got != tt.want {
			t.Errorf("isWithinRoot(%s, %s) = %v, want %v", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestScanDirWithSymlinkDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"real/File.java": "class File {}\n"})

	outsideDir := t.TempDir()
	writeTree(t, outsideDir, map[string]string{"Outside.java": "class Outside {}\n"})

	if err := os.Symlink(outsideDir, filepath.Join(tmpDir, "linked")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	for _, f := range result {
		if filepath.Base(f) == "Outside.java" {
			t.Error("ScanDir() should not follow symlinks outside the root directory")
		}
	}
}

func TestScanTree(t *testing.T) {
	entries := []vcs.TreeEntry{
		{Path: "svc/src/B.java", Size: 10},
		{Path: "svc/src/A.java", Size: 10},
		{Path: "svc/target/Gen.java", Size: 10},
		{Path: "svc/README.md", Size: 10},
		{Path: "other/C.java", Size: 10},
		{Path: "svc/src/Huge.java", Size: 1 << 20},
	}

	cfg := config.DefaultConfig()
	cfg.Analysis.MaxFileSize = 1024
	s := NewScanner(cfg)

	got := s.ScanTree(entries, "svc")
	want := []string{"svc/src/A.java", "svc/src/B.java"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ScanTree(svc) = %v, want %v", got, want)
	}
	if s.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", s.Skipped())
	}

	all := s.ScanTree(entries, "")
	if len(all) != 3 {
		t.Errorf("ScanTree(\"\") = %v, want 3 files", all)
	}
}
