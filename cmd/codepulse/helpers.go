package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/codepulse/internal/cache"
	"github.com/panbanda/codepulse/internal/output"
	"github.com/panbanda/codepulse/pkg/analyzer"
	"github.com/panbanda/codepulse/pkg/config"
)

const (
	configKey = "config"
	loggerKey = "logger"
)

// setup loads the configuration and builds the logger once for every
// command.
func setup(c *cli.Context) error {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := c.String("format"); format != "" {
		cfg.Output.Format = format
	}

	c.App.Metadata[configKey] = cfg
	c.App.Metadata[loggerKey] = newLogger(c.App.ErrWriter, cfg.Log.Level)
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func getConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func getLogger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// newEngine builds an engine with the result cache unless caching is
// disabled by flag or config.
func newEngine(c *cli.Context) *analyzer.Engine {
	cfg := getConfig(c)
	logger := getLogger(c)
	opts := []analyzer.Option{
		analyzer.WithConfig(cfg),
		analyzer.WithLogger(logger),
	}

	if !c.Bool("no-cache") && cfg.Cache.Enabled {
		var tiers cache.Tiered
		if cfg.Cache.Memo > 0 {
			tiers = append(tiers, cache.NewMemo(cfg.Cache.Memo))
		}
		fileCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			logger.Warn("file cache unavailable", "dir", cfg.Cache.Dir, "error", err)
		} else {
			tiers = append(tiers, fileCache)
		}
		if len(tiers) > 0 {
			opts = append(opts, analyzer.WithCache(tiers))
		}
	}
	return analyzer.New(opts...)
}

// newFormatter opens the --output file or stdout in the configured format.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	cfg := getConfig(c)
	format := strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	switch format {
	case "", "text", "json", "markdown", "md", "toon":
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(config.Formats, ", "))
	}

	path := c.String("output")
	if path == "" {
		return output.NewWriterFormatter(output.ParseFormat(format), c.App.Writer, cfg.Output.Color && isTerminal(c.App.Writer)), nil
	}
	return output.NewFormatter(output.ParseFormat(format), path, false)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
