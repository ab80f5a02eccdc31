package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/panbanda/codemetrics/pkg/parser"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestMapFiles(t *testing.T) {
	tmpDir := t.TempDir()

	var files []string
	for i := range 20 {
		files = append(files, createTestFile(t, tmpDir, fmt.Sprintf("F%02d.java", i), "class F {}"))
	}

	results, errs := MapFiles(context.Background(), files, 4, func(p *parser.Parser, path string) (string, error) {
		if p == nil {
			return "", errors.New("nil parser")
		}
		return filepath.Base(path), nil
	}, nil)

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(results))
	}
	for i, r := range results {
		if want := filepath.Base(files[i]); r != want {
			t.Errorf("results[%d] = %s, want %s (input order)", i, r, want)
		}
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results, errs := MapFiles(context.Background(), nil, 0, func(*parser.Parser, string) (string, error) {
		return "", nil
	}, nil)

	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
	if errs != nil {
		t.Errorf("expected nil errors, got %v", errs)
	}
}

func TestMapFiles_ErrorsIsolated(t *testing.T) {
	files := []string{"a", "bad1", "b", "bad0", "c"}
	boom := errors.New("boom")

	var progress atomic.Int32
	results, errs := MapFiles(context.Background(), files, 2, func(_ *parser.Parser, path string) (string, error) {
		if strings.HasPrefix(path, "bad") {
			return "", boom
		}
		return path, nil
	}, func() { progress.Add(1) })

	if got := fmt.Sprint(results); got != "[a b c]" {
		t.Errorf("results = %s, want [a b c]", got)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 failures, got %v", errs)
	}
	if errs[0].Path != "bad0" || errs[1].Path != "bad1" {
		t.Errorf("failures not sorted by path: %v", errs)
	}
	if !errors.Is(errs[0], boom) {
		t.Error("Failure should unwrap to the cause")
	}
	if progress.Load() != int32(len(files)) {
		t.Errorf("progress called %d times, want %d", progress.Load(), len(files))
	}
}

func TestMapFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, errs := MapFiles(ctx, []string{"a", "b"}, 1, func(*parser.Parser, string) (string, error) {
		return "x", nil
	}, nil)

	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
	if len(errs) != 2 || !errors.Is(errs[0], context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", errs)
	}
}

func TestFailures(t *testing.T) {
	var errs Failures
	if errs.Error() != "no errors" {
		t.Errorf("Error() = %q", errs.Error())
	}

	errs = append(errs, Failure{Path: "a.java", Err: errors.New("one")})
	if got := errs.Error(); got != "a.java: one" {
		t.Errorf("Error() = %q", got)
	}

	errs = append(errs, Failure{Path: "b.java", Err: errors.New("two")})
	if got := errs.Error(); got != "2 files failed to process (first: a.java: one)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDefaultWorkers(t *testing.T) {
	if DefaultWorkers() < DefaultWorkerMultiplier {
		t.Errorf("DefaultWorkers() = %d", DefaultWorkers())
	}
}
