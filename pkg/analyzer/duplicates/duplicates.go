// Package duplicates groups unit metrics by a content fingerprint and
// reports fingerprints shared across files.
//
// The fingerprint covers the truncated signature, lines of code and
// cyclomatic complexity only. Units whose bodies differ collide when those
// three agree, and identical bodies with different signatures never group.
package duplicates

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/codemetrics/pkg/models"
)

// Config controls which units and groups are reported.
type Config struct {
	// MinLines is the smallest lines-of-code count a unit needs to take part.
	MinLines int
	// MinOccurrences is the smallest group size reported.
	MinOccurrences int
	// MinFiles is the smallest number of distinct files a group must span.
	MinFiles int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinLines:       5,
		MinOccurrences: 2,
		MinFiles:       2,
	}
}

// Option is a functional option for configuring Index.
type Option func(*Index)

// WithConfig replaces the thresholds. MinOccurrences and MinFiles are
// raised to at least 2.
func WithConfig(cfg Config) Option {
	return func(x *Index) {
		x.cfg = cfg
	}
}

// WithMinLines sets the eligibility threshold.
func WithMinLines(n int) Option {
	return func(x *Index) {
		x.cfg.MinLines = n
	}
}

type bucket struct {
	occurrences []models.Occurrence
	files       map[string]struct{}
}

// Index accumulates eligible units by fingerprint. Groups are reported in
// order of their first occurrence. An Index is not safe for concurrent use.
type Index struct {
	cfg     Config
	buckets map[string]*bucket
	order   []string
}

// New creates an empty index.
func New(opts ...Option) *Index {
	x := &Index{
		cfg:     DefaultConfig(),
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(x)
	}
	x.cfg.MinOccurrences = max(2, x.cfg.MinOccurrences)
	x.cfg.MinFiles = max(2, x.cfg.MinFiles)
	return x
}

// Config returns the effective thresholds.
func (x *Index) Config() Config {
	return x.cfg
}

// Add records a unit found in file. Units shorter than MinLines are ignored.
func (x *Index) Add(file string, u models.UnitMetrics) {
	if u.LinesOfCode < x.cfg.MinLines {
		return
	}
	key := Fingerprint(u.Signature, u.LinesOfCode, u.Cyclomatic)
	b, ok := x.buckets[key]
	if !ok {
		b = &bucket{files: make(map[string]struct{})}
		x.buckets[key] = b
		x.order = append(x.order, key)
	}
	b.occurrences = append(b.occurrences, models.Occurrence{
		File:      file,
		StartLine: u.StartLine,
		EndLine:   u.EndLine,
		Preview:   Preview(u),
	})
	b.files[file] = struct{}{}
}

// AddFile records every unit of f.
func (x *Index) AddFile(f *models.SourceFile) {
	for _, u := range f.Units {
		x.Add(f.Path, u)
	}
}

// Groups returns the qualifying duplicate groups.
func (x *Index) Groups() []models.DuplicateGroup {
	groups := make([]models.DuplicateGroup, 0)
	for _, key := range x.order {
		b := x.buckets[key]
		if len(b.occurrences) < x.cfg.MinOccurrences || len(b.files) < x.cfg.MinFiles {
			continue
		}
		occ := make([]models.Occurrence, len(b.occurrences))
		copy(occ, b.occurrences)
		groups = append(groups, models.DuplicateGroup{
			Fingerprint: key,
			TokenCount:  len(occ[0].Preview),
			Occurrences: occ,
		})
	}
	return groups
}

// Find indexes every unit of files and returns the qualifying groups.
// It must only be called once all files have been analysed.
func Find(files []models.SourceFile, opts ...Option) []models.DuplicateGroup {
	x := New(opts...)
	for i := range files {
		x.AddFile(&files[i])
	}
	return x.Groups()
}

// Fingerprint hashes the signature, lines of code and complexity with
// xxHash64 and returns 16 lowercase hex digits.
func Fingerprint(signature string, loc, cc int) string {
	key := signature + "|" + strconv.Itoa(loc) + "|" + strconv.Itoa(cc)
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// Preview renders the human-readable description of an occurrence.
func Preview(u models.UnitMetrics) string {
	return fmt.Sprintf("%s (%d lines, CC=%d)", u.Signature, u.LinesOfCode, u.Cyclomatic)
}
