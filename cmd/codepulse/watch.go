package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/codepulse/internal/output"
	"github.com/panbanda/codepulse/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and re-analyze",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Force a language instead of detecting it from the extension",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Debounce duration",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg := getConfig(c)
	engine := newEngine(c)
	language := c.String("language")

	watcher, err := watch.NewWatcher(getPaths(c), cfg, c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()
	watcher.SetLogger(getLogger(c))

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	watcher.SetCallback(func(path string) {
		report, errs := engine.AnalyzeFiles(c.Context, []string{path}, language)
		if errs != nil {
			color.Red("%s: %v", path, errs.Errors[0].Err)
			return
		}
		for _, f := range report.Files {
			if err := formatter.Output(output.AnalysisReport(f.Path, f.Analysis)); err != nil {
				color.Red("%s: %v", path, err)
			}
		}
	})

	ctx, stop := signalContext(c.Context)
	defer stop()

	color.Cyan("Watching %s, press Ctrl+C to stop", strings.Join(getPaths(c), ", "))
	err = watcher.Start(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(c.App.ErrWriter, "\nStopping watch...")
		return nil
	}
	return err
}
