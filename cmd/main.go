package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/parkstats/internal/adapters/geodesic"
	"github.com/okian/parkstats/internal/adapters/http/api"
	"github.com/okian/parkstats/internal/adapters/http/swagger"
	app "github.com/okian/parkstats/internal/app"
	"github.com/okian/parkstats/internal/config"
	"github.com/okian/parkstats/pkg/logger"
	"github.com/okian/parkstats/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, loggerInstance)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		return
	}

	// Data endpoints answer 503 until a load succeeds.
	if err := svc.LoadFiles(ctx, cfg.ResultsFile, cfg.RouteFile); err != nil {
		loggerInstance.Error(ctx, "initial load failed", logger.String("results_file", cfg.ResultsFile), logger.Error(err))
	}

	go startSystemMetricsUpdater(ctx)
	go watchReload(ctx, svc, cfg, loggerInstance)

	mux, err := newMux(ctx, cfg, svc, loggerInstance)
	if err != nil {
		os.Stderr.WriteString("failed to build routes: " + err.Error() + "\n")
		return
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService builds the statistics service from cfg.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	unit, err := geodesic.ParseUnit(cfg.RouteUnit)
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(log),
		app.WithEventDistance(cfg.EventDistanceKm),
		app.WithRouteUnit(unit),
		app.WithLabels(cfg.StartLabel, cfg.EndLabel),
	), nil
}

// newMux registers the API and its reference pages.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) (*http.ServeMux, error) {
	display, err := geodesic.ParseUnit(cfg.DisplayUnit)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, api.WithDefaultUnit(display), api.WithLogger(log)).Register(ctx, mux)
	return mux, nil
}

// watchReload reloads the configured files on every SIGHUP until ctx ends.
func watchReload(ctx context.Context, svc *app.Service, cfg *config.Config, log logger.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			reload(ctx, svc, cfg, log)
		}
	}
}

func reload(ctx context.Context, svc *app.Service, cfg *config.Config, log logger.Logger) {
	log.Info(ctx, "reloading results", logger.String("results_file", cfg.ResultsFile), logger.String("route_file", cfg.RouteFile))
	if err := svc.LoadFiles(ctx, cfg.ResultsFile, cfg.RouteFile); err != nil {
		log.Error(ctx, "reload failed; keeping previous dataset", logger.Error(err))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())
}
