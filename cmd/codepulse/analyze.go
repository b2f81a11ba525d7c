package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/codepulse/internal/fileproc"
	"github.com/panbanda/codepulse/internal/output"
	"github.com/panbanda/codepulse/internal/progress"
	"github.com/panbanda/codepulse/internal/scanner"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Score a snippet, files, or directories",
		ArgsUsage: "[path...] | -",
		Description: `With no arguments the current directory is scanned. A single "-" reads
one snippet from stdin; --code analyzes an inline snippet.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Language of the input (javascript, python); detected from file extensions when omitted",
			},
			&cli.StringFlag{
				Name:  "code",
				Usage: "Analyze this snippet instead of files",
			},
			&cli.IntFlag{
				Name:  "fail-under",
				Usage: "Fail when any overall score is below this value (0 disables)",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	if c.IsSet("code") {
		return analyzeSnippet(c, c.String("code"))
	}
	if c.Args().Len() == 1 && c.Args().First() == "-" {
		in := c.App.Reader
		if in == nil {
			in = os.Stdin
		}
		code, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return analyzeSnippet(c, string(code))
	}
	return analyzeFiles(c, getPaths(c))
}

func analyzeSnippet(c *cli.Context, code string) error {
	engine := newEngine(c)
	result := engine.AnalyzeContext(c.Context, code, c.String("language"))

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.AnalysisReport("", result)); err != nil {
		return err
	}
	return checkFailUnder(c, result.OverallScore)
}

func analyzeFiles(c *cli.Context, paths []string) error {
	cfg := getConfig(c)
	files, err := scanner.New(cfg).ScanPaths(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no source files found")
	}

	ctx := c.Context
	var bar *progress.Bar
	if isTerminal(c.App.ErrWriter) {
		bar = progress.New(c.App.ErrWriter, "Analyzing", len(files))
		ctx = fileproc.WithTracker(ctx, bar.Tracker())
	}

	report, errs := newEngine(c).AnalyzeFiles(ctx, files, c.String("language"))
	if bar != nil {
		failed := 0
		if errs != nil {
			failed = len(errs.Errors)
		}
		bar.Finish(failed)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.BatchView(report)); err != nil {
		return err
	}
	if errs != nil && len(report.Files) == 0 {
		return errs
	}
	return checkFailUnder(c, report.Summary.MinScore)
}

func checkFailUnder(c *cli.Context, score int) error {
	if required := c.Int("fail-under"); required > 0 && score < required {
		return fmt.Errorf("score %d is below the required %d", score, required)
	}
	return nil
}
