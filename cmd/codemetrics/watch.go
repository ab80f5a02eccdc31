package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/codemetrics/internal/service/analysis"
	"github.com/panbanda/codemetrics/pkg/config"
	"github.com/panbanda/codemetrics/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	flags := outputFlags(config.Formats, "text")
	flags = append(flags,
		includeFlag(),
		&cli.DurationFlag{
			Name:  "debounce",
			Value: watch.DefaultDebounce,
			Usage: "Quiet period before a batch of changes is analyzed",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Parallel file workers (0 uses the config, then 2x CPUs)",
		},
	)
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the analysis whenever source files change",
		ArgsUsage: "[path]",
		Flags:     flags,
		Action:    runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	root := getPath(c)
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}
	format, err := selectFormat(c, cfg, config.Formats)
	if err != nil {
		return err
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	scan, err := svc.Scan(root, "")
	if err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(scan.Root, cfg, c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()
	watcher.SetOutput(c.App.ErrWriter)

	analyzeOnce := func(ctx context.Context) {
		result, err := svc.Analyze(ctx, scan.Root, analysis.Options{Workers: c.Int("workers")})
		if err != nil {
			if ctx.Err() == nil {
				color.New(color.FgRed).Fprintf(c.App.ErrWriter, "Analysis error: %v\n", err)
			}
			return
		}
		if err := emit(c, cfg, result, scan.Root, format, metricsView(cfg, result)); err != nil {
			color.New(color.FgRed).Fprintf(c.App.ErrWriter, "Output error: %v\n", err)
			return
		}
		printWarnings(c.App.ErrWriter, result.Warnings, cfg.Output.Verbose)
	}
	watcher.SetCallback(func(ctx context.Context, _ []string) {
		analyzeOnce(ctx)
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyzeOnce(ctx)
	if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, "\nStopping watch...")
	return nil
}
