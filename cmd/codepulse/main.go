package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "codepulse",
		Usage:    "Code quality scoring for JavaScript and Python",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `codepulse measures cyclomatic complexity, nesting depth, function length
and unused variables, and turns them into a 0-100 quality score with
suggestions.

Supports: JavaScript, Python`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CODEPULSE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the result cache",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error (default from config)",
				EnvVars: []string{"CODEPULSE_LOG_LEVEL"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			analyzeCmd(),
			serveCmd(),
			mcpCmd(),
			watchCmd(),
			initCmd(),
			configCmd(),
			cacheCmd(),
		},
	}
}
