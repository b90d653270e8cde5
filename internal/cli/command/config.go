package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripedmap-go/internal/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "origin",
						Usage: "list every key with the layer that set it (default, file, env, override)",
					},
				},
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	ov := overrides(c, globalOverrides)
	if c.Bool("origin") {
		_, settings, err := config.LoadSettings(ParseGlobalFlags(c).Config, ov)
		if err != nil {
			return err
		}
		return render(c, settings)
	}
	cfg, err := loadConfig(c, ov)
	if err != nil {
		return err
	}
	return render(c, cfg)
}

func configValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = ParseGlobalFlags(c).Config
	}
	if path == "" {
		return fmt.Errorf("no configuration file given")
	}

	if _, err := config.Load(path, nil); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(c), "%s: configuration is valid\n", path)
	return nil
}
