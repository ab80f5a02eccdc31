package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newApp() *cli.App {
	prof := &profiler{}
	return &cli.App{
		Name:    "codemetrics",
		Usage:   "Line counts, complexity, maintainability and duplicate detection",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Description: `codemetrics measures every function, method and constructor of a source
tree: total, code and comment lines, cyclomatic complexity and a
maintainability index. Units with identical shape across files are
reported as likely duplicates.

Supports: Java, C#, Go`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CODEMETRICS_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "List every skipped file instead of a count",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Write <prefix>.cpu.pprof and <prefix>.mem.pprof profiles",
			},
		},
		Before: func(c *cli.Context) error { return prof.start(c.String("pprof")) },
		After:  func(c *cli.Context) error { return prof.stop(c.App.ErrWriter) },
		Commands: []*cli.Command{
			analyzeCmd(),
			duplicatesCmd(),
			watchCmd(),
			initCmd(),
			configCmd(),
			mcpCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// profiler records a CPU profile for the whole run and a heap profile at
// its end. The zero value, or an empty prefix, profiles nothing.
type profiler struct {
	prefix string
	cpu    *os.File
}

func (p *profiler) start(prefix string) error {
	if prefix == "" {
		return nil
	}
	f, err := os.Create(prefix + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	p.prefix, p.cpu = prefix, f
	return nil
}

func (p *profiler) stop(w io.Writer) error {
	if p.cpu == nil {
		return nil
	}
	pprof.StopCPUProfile()
	p.cpu.Close()
	p.cpu = nil

	mem, err := os.Create(p.prefix + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer mem.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(mem); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	color.New(color.FgGreen).Fprintf(w, "Profiles written to %s.cpu.pprof and %s.mem.pprof\n", p.prefix, p.prefix)
	return nil
}
