package command

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripedmap-go/internal/cli/output"
	"github.com/yndnr/stripedmap-go/internal/telemetry/logger"
	"github.com/yndnr/stripedmap-go/internal/workload"
	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// mapOverrides binds the map tuning flags shared by run and serve.
var mapOverrides = []flagKey{
	{"buckets", "map.initial_buckets"},
	{"stripes", "map.stripes"},
	{"max-load-factor", "map.max_load_factor"},
	{"hash", "map.hash"},
	{"memory-limit", "map.memory_limit"},
}

var workloadOverrides = []flagKey{
	{"workers", "workload.workers"},
	{"operations", "workload.operations"},
	{"duration", "workload.duration"},
	{"key-space", "workload.key_space"},
	{"distribution", "workload.distribution"},
	{"rate", "workload.rate"},
	{"bulk-size", "workload.bulk_size"},
}

func mapFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "buckets", Usage: "Initial bucket count"},
		&cli.IntFlag{Name: "stripes", Usage: "Number of lock stripes"},
		&cli.Float64Flag{Name: "max-load-factor", Usage: "Entries per bucket that triggers a rehash"},
		&cli.StringFlag{Name: "hash", Usage: "Key hash function: murmur3, xxhash, maphash"},
		&cli.Int64Flag{Name: "memory-limit", Usage: "Byte limit on bucket and entry memory (0 for none)"},
		&cli.BoolFlag{Name: "no-rehash", Usage: "Start with automatic rehash disabled"},
	}
}

func workloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "workers", Usage: "Concurrent workers"},
		&cli.IntFlag{Name: "operations", Aliases: []string{"n"}, Usage: "Total operations (0 for no limit)"},
		&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Run time limit (0 for no limit)"},
		&cli.IntFlag{Name: "key-space", Usage: "Distinct keys for the uniform distribution"},
		&cli.StringFlag{Name: "distribution", Usage: "Key distribution: uniform, unique"},
		&cli.Float64Flag{Name: "rate", Usage: "Operations per second across workers (0 for unlimited)"},
		&cli.IntFlag{Name: "bulk-size", Usage: "Items per bulk insert"},
	}
}

// noRehash turns --no-rehash into an override. The flag only ever
// disables, so an unset flag leaves the configured value alone.
func noRehash(c *cli.Context, ov map[string]any) {
	if c.Bool("no-rehash") {
		ov["map.rehash_enabled"] = false
	}
}

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	flags := append(mapFlags(), workloadFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:  "progress",
		Usage: "Show a live status line on stderr",
	})

	return &cli.Command{
		Name:   "run",
		Usage:  "Run a workload against a new map and print the report",
		Flags:  flags,
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	ov := overrides(c, globalOverrides, mapOverrides, workloadOverrides)
	noRehash(c, ov)
	cfg, err := loadConfig(c, ov)
	if err != nil {
		return err
	}

	log, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	m, err := newMap[uint64](cfg, log)
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}

	runner, err := workload.New(cfg.Workload, m)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	var progress *output.Progress
	if c.Bool("progress") {
		progress = output.NewProgress(errWriter(c), 0, func() string {
			return mapStatus(m)
		})
		progress.Start()
	}

	rep, err := runner.Run(ctx)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return err
	}
	return render(c, rep)
}

// mapStatus is the one-line summary used by the progress display.
func mapStatus(m *stripedmap.MultiMap[string, uint64]) string {
	return fmt.Sprintf("size=%s buckets=%s load=%.2f",
		output.FormatCount(uint64(m.Size())),
		output.FormatCount(uint64(m.BucketCount())),
		m.LoadFactor(),
	)
}
