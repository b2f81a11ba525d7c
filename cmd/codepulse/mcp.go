package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/codepulse/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio that exposes the analyzer as tools an
LLM can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "codepulse": {
        "command": "codepulse",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_code     Score one snippet
  - analyze_files    Score files and directories`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the server manifest as JSON and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	srv := mcpserver.NewServer(version, newEngine(c), getConfig(c))
	ctx, stop := signalContext(c.Context)
	defer stop()
	return srv.Run(ctx)
}
