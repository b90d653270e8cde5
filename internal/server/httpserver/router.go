package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/stripedmap-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics serves the Prometheus exposition.
	Metrics http.Handler

	// MetricsPath is where Metrics is mounted. Defaults to /metrics.
	MetricsPath string

	// Stats is sampled on every GET /stats.
	Stats metric.StatsSource

	Logger *slog.Logger

	// RateLimit is the per-client request rate. 0 disables limiting.
	RateLimit int

	// AccessLog logs every request.
	AccessLog bool
}

// NewRouter builds the handler for all routes.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	if cfg.Stats != nil {
		mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, cfg.Stats.Stats())
		})
	}
	if cfg.Metrics != nil {
		mux.Handle("GET "+metricsPath, cfg.Metrics)
	}

	middlewares := []Middleware{Recover(logger), RequestID()}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit))
	}
	if cfg.AccessLog {
		middlewares = append(middlewares, AccessLog(logger))
	}
	return Chain(mux, middlewares...)
}
