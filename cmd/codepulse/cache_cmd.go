package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/codepulse/internal/cache"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the on-disk result cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache size and entry ages",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached result",
				Action: runCacheClear,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	cfg := getConfig(c)
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
}

func runCacheStats(c *cli.Context) error {
	fc, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := fc.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Entries:    %d\n", stats.Entries)
	fmt.Fprintf(w, "Total size: %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(w, "Oldest:     %s\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:     %s\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClear(c *cli.Context) error {
	fc, err := openCache(c)
	if err != nil {
		return err
	}
	if err := fc.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, "Cache cleared.")
	return err
}
