package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/codemetrics/internal/output"
	"github.com/panbanda/codemetrics/internal/progress"
	"github.com/panbanda/codemetrics/internal/service/analysis"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/models"
	"github.com/urfave/cli/v2"
)

var duplicateFormats = []string{"text", "json", "markdown", "toon"}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Measure every unit and write a metrics report",
		ArgsUsage: "[path]",
		Description: `Writes code-metrics-report.html into the analyzed directory unless
--format or --output says otherwise.

Examples:
  codemetrics analyze ./src
  codemetrics analyze -f csv -o metrics.csv .
  codemetrics analyze -f json --ref v1.2.0 .`,
		Flags:  append(outputFlags(config.Formats, "html"), runFlags()...),
		Action: runAnalyzeCmd,
	}
}

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup", "clones"},
		Usage:     "List units that appear with the same shape in several files",
		ArgsUsage: "[path]",
		Flags:     append(outputFlags(duplicateFormats, "text"), runFlags()...),
		Action:    runDuplicatesCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	return runReport(c, config.Formats, metricsView)
}

func runDuplicatesCmd(c *cli.Context) error {
	return runReport(c, duplicateFormats, func(_ *config.Config, r *models.AnalysisResult) output.Renderable {
		return output.DuplicatesReport(r)
	})
}

// view builds what non-file formats render.
type view func(*config.Config, *models.AnalysisResult) output.Renderable

func metricsView(cfg *config.Config, r *models.AnalysisResult) output.Renderable {
	return output.MetricsReport(r, cfg.Thresholds)
}

func runReport(c *cli.Context, formats []string, v view) error {
	t, err := resolveTarget(c)
	if err != nil {
		return err
	}
	defer t.cleanup()

	cfg, err := loadConfig(c, t.workDir)
	if err != nil {
		return err
	}
	format, err := selectFormat(c, cfg, formats)
	if err != nil {
		return err
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	scan, err := svc.Scan(t.root, t.ref)
	if err != nil {
		return err
	}
	if len(scan.Files) == 0 {
		color.New(color.FgYellow).Fprintln(c.App.ErrWriter, "No source files found")
		return nil
	}

	tracker := progress.NewTracker("Analyzing...", len(scan.Files), progress.WithWriter(c.App.ErrWriter))
	result, err := svc.Run(c.Context, scan, analysisOptions(c, t.ref, tracker.Tick))
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSkipped(scan.Skipped)

	dir := scan.Root
	if t.workDir != t.root {
		dir = t.workDir
	}
	if err := emit(c, cfg, result, dir, format, v(cfg, result)); err != nil {
		return err
	}
	printWarnings(c.App.ErrWriter, result.Warnings, cfg.Output.Verbose)
	return nil
}
