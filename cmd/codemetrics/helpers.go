package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/codemetrics/internal/fileproc"
	"github.com/panbanda/codemetrics/internal/output"
	"github.com/panbanda/codemetrics/internal/progress"
	"github.com/panbanda/codemetrics/internal/remote"
	"github.com/panbanda/codemetrics/internal/report"
	"github.com/panbanda/codemetrics/internal/service/analysis"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
	"github.com/urfave/cli/v2"
)

// getPath returns the positional root, defaulting to ".".
func getPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// target is what a command analyzes.
type target struct {
	root string
	ref  string
	// workDir is searched for a config file and receives default report
	// files: the root itself, or the current directory for remote clones.
	workDir string
	cleanup func()
}

// resolveTarget returns the local root for the positional path. A remote
// reference (owner/repo@ref, a git URL) is cloned first and analyzed at
// its revision; cleanup removes the clone.
func resolveTarget(c *cli.Context) (*target, error) {
	path, ref := getPath(c), c.String("ref")
	t := &target{root: path, ref: ref, workDir: path, cleanup: func() {}}

	src, err := remote.Parse(path)
	if err != nil || src == nil {
		return t, err
	}
	if ref != "" {
		src.Ref = ref
	}
	spinner := progress.NewSpinner("Cloning "+src.URL, progress.WithWriter(c.App.ErrWriter))
	if err := src.Clone(c.Context, spinner, c.Bool("shallow")); err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	spinner.Finish()

	t.root, t.ref, t.workDir = src.CloneDir, src.Revision(), "."
	t.cleanup = func() { _ = src.Cleanup() }
	return t, nil
}

// loadConfig loads --config when given, otherwise the config file found in
// root, otherwise defaults.
func loadConfig(c *cli.Context, root string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		dir := root
		if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
			dir = filepath.Dir(root)
		}
		cfg, err = config.LoadOrDefault(dir)
	}
	if err != nil {
		return nil, err
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Analysis.Include = include
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	if !cfg.Output.Color {
		color.NoColor = true
	}
	return cfg, nil
}

func includeFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "include",
		Usage: "Only analyze files matching these globs, relative to the root (e.g. src/**/*.java)",
	}
}

// runFlags are shared by the commands that run the pipeline.
func runFlags() []cli.Flag {
	return []cli.Flag{
		includeFlag(),
		&cli.StringFlag{
			Name:  "ref",
			Usage: "Analyze the tree as committed at this git revision",
		},
		&cli.BoolFlag{
			Name:  "shallow",
			Usage: "Fetch only the latest commit when analyzing a remote repository",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Parallel file workers (0 uses the config, then 2x CPUs)",
		},
		&cli.IntFlag{
			Name:  "min-lines",
			Usage: "Minimum unit lines for duplicate detection (0 uses the config)",
		},
		&cli.IntFlag{
			Name:  "min-occurrences",
			Usage: "Minimum occurrences for a duplicate group (0 uses the config)",
		},
	}
}

func outputFlags(formats []string, def string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   def,
			Usage:   "Output format: " + strings.Join(formats, ", "),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
	}
}

func analysisOptions(c *cli.Context, ref string, onProgress fileproc.ProgressFunc) analysis.Options {
	return analysis.Options{
		Ref:            ref,
		Workers:        c.Int("workers"),
		MinLines:       c.Int("min-lines"),
		MinOccurrences: c.Int("min-occurrences"),
		OnProgress:     onProgress,
	}
}

// selectFormat returns --format, or the configured format when the flag is
// unset, and checks it against allowed.
func selectFormat(c *cli.Context, cfg *config.Config, allowed []string) (string, error) {
	format := strings.ToLower(c.String("format"))
	if !c.IsSet("format") && slices.Contains(allowed, cfg.Output.Format) {
		format = cfg.Output.Format
	}
	if format == "md" {
		format = "markdown"
	}
	if !slices.Contains(allowed, format) {
		return "", fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return format, nil
}

// outputPath returns --output, or the configured file when the flag is unset.
func outputPath(c *cli.Context, cfg *config.Config) string {
	if c.IsSet("output") {
		return c.String("output")
	}
	return cfg.Output.File
}

// emit writes result as an HTML or CSV report file, by default into dir, or
// renders r through a Formatter for the other formats.
func emit(c *cli.Context, cfg *config.Config, result *models.AnalysisResult, dir, format string, r output.Renderable) error {
	out := outputPath(c, cfg)

	if format == "html" || format == "csv" {
		if out == "" {
			out = report.DefaultPath(dir, format)
		}
		if err := report.WriteFile(result, format, out, cfg.Thresholds); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		color.New(color.FgGreen).Fprintf(c.App.ErrWriter, "Report written to %s\n", out)
		return nil
	}

	if out != "" {
		return output.RenderFile(out, output.ParseFormat(format), r)
	}
	return output.Render(c.App.Writer, output.ParseFormat(format), r, cfg.Output.Color)
}

// printWarnings reports skipped files to w: each one when verbose, else a count.
func printWarnings(w io.Writer, warnings []models.Warning, verbose bool) {
	if len(warnings) == 0 {
		return
	}
	yellow := color.New(color.FgYellow)
	if !verbose {
		yellow.Fprintf(w, "%d file(s) could not be analyzed (use --verbose for details)\n", len(warnings))
		return
	}
	yellow.Fprintf(w, "Warnings (%d):\n", len(warnings))
	for _, warn := range warnings {
		fmt.Fprintf(w, "  - %s: %s\n", warn.Path, warn.Error)
	}
}
