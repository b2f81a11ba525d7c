package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration as TOML",
				Description: `Shows the defaults merged with the config file.

Examples:
  codepulse config show
  codepulse -c codepulse.toml config show`,
				Action: runConfigShow,
			},
			{
				Name:  "validate",
				Usage: "Validate the configuration",
				Description: `Loads the config file and checks every setting.

Examples:
  codepulse config validate
  codepulse -c .codepulse/codepulse.toml config validate`,
				Action: runConfigValidate,
			},
		},
	}
}

func runConfigShow(c *cli.Context) error {
	content, err := renderConfig(getConfig(c), "")
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.App.Writer, content)
	return err
}

func runConfigValidate(c *cli.Context) error {
	if err := getConfig(c).Validate(); err != nil {
		color.Red("Configuration validation failed:")
		return err
	}
	_, err := fmt.Fprintln(c.App.Writer, "Configuration is valid.")
	return err
}
