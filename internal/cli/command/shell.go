package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripedmap-go/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Operate on an in-process map interactively",
		Flags: append(mapFlags(), &cli.StringFlag{
			Name:  "history",
			Usage: "History file (empty to disable)",
			Value: repl.DefaultHistoryFile(),
		}),
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	ov := overrides(c, globalOverrides, mapOverrides)
	noRehash(c, ov)
	cfg, err := loadConfig(c, ov)
	if err != nil {
		return err
	}

	log, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	m, err := newMap[string](cfg, log)
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}

	history := repl.NewHistory(c.String("history"))
	if err := history.Load(); err != nil {
		log.Warn("history not loaded", "error", err)
	}

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	r := repl.New(repl.NewMapSession(m),
		repl.WithIO(in, outWriter(c)),
		repl.WithHistory(history),
	)
	runErr := r.Run()

	if err := history.Save(); err != nil {
		log.Warn("history not saved", "error", err)
	}
	return runErr
}
