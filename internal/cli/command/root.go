package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripedmap-go/internal/cli/output"
	"github.com/yndnr/stripedmap-go/internal/config"
	"github.com/yndnr/stripedmap-go/internal/infra/buildinfo"
	"github.com/yndnr/stripedmap-go/internal/telemetry/logger"
	"github.com/yndnr/stripedmap-go/pkg/hashfn"
	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "stripedmap-cli",
		Usage:   "Exercise and observe a striped concurrent hash multimap",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(),
			ServeCommand(),
			ShellCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"STRIPEDMAP_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Expand nested lists such as per-stripe statistics",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config    string
	Output    string
	Wide      bool
	LogLevel  string
	LogFormat string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		Output:    c.String("output"),
		Wide:      c.Bool("wide"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
	}
}

// flagKey binds a flag to the configuration key it overrides.
type flagKey struct {
	flag string
	key  string
}

var globalOverrides = []flagKey{
	{"log-level", "log.level"},
	{"log-format", "log.format"},
}

// overrides collects the values of explicitly set flags keyed by their
// configuration key.
func overrides(c *cli.Context, bindings ...[]flagKey) map[string]any {
	out := make(map[string]any)
	for _, group := range bindings {
		for _, b := range group {
			if c.IsSet(b.flag) {
				out[b.key] = c.Value(b.flag)
			}
		}
	}
	return out
}

// loadConfig builds the effective configuration for a command from the
// --config file and ov.
func loadConfig(c *cli.Context, ov map[string]any) (*config.Config, error) {
	return config.Load(ParseGlobalFlags(c).Config, ov)
}

// newLogger creates the process logger from cfg, writing to the app's
// error stream, and installs it as the default.
func newLogger(c *cli.Context, cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: errWriter(c),
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// newMap builds the map under test from the map section.
func newMap[V any](cfg *config.Config, log logger.Logger) (*stripedmap.MultiMap[string, V], error) {
	hash, err := cfg.Map.Hasher()
	if err != nil {
		return nil, err
	}
	opts := append(cfg.Map.MapOptions(), stripedmap.WithLogger(log.Slog()))
	return stripedmap.NewFunc[string, V](hash, hashfn.Equal[string], opts...)
}

// render writes data to the app's output stream in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.Wide).Format(outWriter(c), data)
}

func outWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
