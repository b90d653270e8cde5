package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripedmap-go/internal/config"
	"github.com/yndnr/stripedmap-go/internal/infra/confloader"
	"github.com/yndnr/stripedmap-go/internal/infra/shutdown"
	"github.com/yndnr/stripedmap-go/internal/server/httpserver"
	"github.com/yndnr/stripedmap-go/internal/telemetry/logger"
	"github.com/yndnr/stripedmap-go/internal/telemetry/metric"
	"github.com/yndnr/stripedmap-go/internal/workload"
	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

const (
	shutdownTimeout = 10 * time.Second

	// statsRateLimit bounds requests per client per second. /stats takes
	// every stripe read lock in turn.
	statsRateLimit = 50
)

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	flags := append(mapFlags(), workloadFlags()...)
	flags = append(flags, &cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "Listen address for the metrics endpoint",
	})

	return &cli.Command{
		Name:  "serve",
		Usage: "Run a workload and expose Prometheus metrics until interrupted",
		Description: "Operation counters and latencies are served on the metrics path, map " +
			"statistics on /stats. When --config is given the file is watched and " +
			"max_load_factor, rehash_enabled and the log level are applied live.",
		Flags:  flags,
		Action: serveAction,
	}
}

var serveOverrides = []flagKey{
	{"metrics-addr", "metrics.addr"},
}

func serveAction(c *cli.Context) error {
	ov := overrides(c, globalOverrides, mapOverrides, workloadOverrides, serveOverrides)
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

	reg := metric.NewRegistry()
	reg.MustRegister(metric.NewCollector("workload", m))

	runner, err := workload.New(cfg.Workload, m, workload.WithRecorder(reg))
	if err != nil {
		return err
	}

	h := shutdown.NewHandler(shutdownTimeout)

	if path := ParseGlobalFlags(c).Config; path != "" {
		w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
		if err != nil {
			return fmt.Errorf("create config watcher: %w", err)
		}
		if err := w.Watch(path); err != nil {
			_ = w.Stop()
			return fmt.Errorf("watch %s: %w", path, err)
		}
		w.OnChange(func(string) {
			next, err := config.Load(path, ov)
			if err != nil {
				log.Warn("configuration reload rejected", "error", err)
				return
			}
			applyLive(m, next, log)
		})
		w.StartAsync()
		h.OnShutdown(func(context.Context) error { return w.Stop() })
	}

	srv := httpserver.New(cfg.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
		Metrics:     reg.Handler(),
		MetricsPath: cfg.Metrics.Path,
		Stats:       m,
		Logger:      log.Slog(),
		RateLimit:   statsRateLimit,
		AccessLog:   true,
	}))
	ln, err := srv.Listen()
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Metrics.Addr, err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
			h.Trigger()
		}
	}()
	h.OnShutdown(srv.Shutdown)
	log.Info("serving metrics",
		"addr", ln.Addr().String(),
		"path", cfg.Metrics.Path,
	)

	ctx, cancel := context.WithCancel(logger.WithLogger(c.Context, log))
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		rep, err := runner.Run(ctx)
		if err != nil {
			log.Error("workload failed", "error", err)
			return
		}
		log.Info("workload complete",
			"run_id", rep.RunID,
			"operations", rep.Operations,
			"ops_per_sec", rep.OpsPerSec,
			"size", rep.Map.Size,
			"buckets", rep.Map.Buckets,
		)
	}()
	h.OnShutdown(func(ctx context.Context) error {
		cancel()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("workload did not stop: %w", ctx.Err())
		}
	})

	err = h.Wait(c.Context)
	log.Info("shutdown complete")
	return err
}

// tunable is the part of a map that can change while it is in use.
type tunable interface {
	SetMaxLoadFactor(f float64) error
	EnableRehash()
	DisableRehash()
}

var _ tunable = (*stripedmap.MultiMap[string, uint64])(nil)

// applyLive applies the settings of cfg that do not require a new map.
func applyLive(m tunable, cfg *config.Config, log logger.Logger) {
	cfg = cfg.Sanitize()
	if cfg.Map.RehashEnabled {
		m.EnableRehash()
	} else {
		m.DisableRehash()
	}
	if err := m.SetMaxLoadFactor(cfg.Map.MaxLoadFactor); err != nil {
		log.Warn("max load factor update failed",
			"max_load_factor", cfg.Map.MaxLoadFactor,
			"error", err,
		)
	}
	logger.SetLevel(cfg.Log.Level)

	log.Info("configuration reloaded",
		"max_load_factor", cfg.Map.MaxLoadFactor,
		"rehash_enabled", cfg.Map.RehashEnabled,
		"log_level", cfg.Log.Level,
		"map", cfg.Map,
	)
}
