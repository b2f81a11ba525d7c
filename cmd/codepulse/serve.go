package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/codepulse/internal/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the analysis endpoint over HTTP",
		Description: `Starts an HTTP server exposing:

  POST /api/analyze   {"code": "...", "language": "javascript"}
  GET  /healthz
  GET  /metrics       Prometheus metrics`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address (default from config)",
				EnvVars: []string{"CODEPULSE_ADDR"},
			},
		},
		Action: runServeCmd,
	}
}

func runServeCmd(c *cli.Context) error {
	cfg := getConfig(c)
	srvCfg := cfg.Server
	if addr := c.String("addr"); addr != "" {
		srvCfg.Addr = addr
	}

	srv, err := server.New(newEngine(c),
		server.WithConfig(srvCfg),
		server.WithLogger(getLogger(c)),
	)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(c.Context)
	defer stop()
	return srv.Run(ctx)
}
