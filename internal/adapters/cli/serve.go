package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/adapters/daemon"
	"github.com/andrescamacho/factory-economy/internal/adapters/metrics"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/config"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/logging"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/pidfile"
)

// NewServeCommand creates the serve command that runs the engine daemon
func NewServeCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine daemon",
		Long: `Run the engine daemon. The scheduler ticks production and upgrade timers,
runs tax assessment, overdue checks and salary on their intervals, and
persists state periodically and on shutdown.

Player actions (buy, sell, produce, upgrade and payments) sent by the CLI
while the daemon runs go to the action endpoint at daemon.api_address and
are applied on the scheduler loop between ticks. Players receive
notifications over a websocket at the configured notify address. Tax and
buff settings are reloaded when the config file changes.

Neither endpoint authenticates: an action names its player and a websocket
subscribes with ?owner=<player id>, and both are taken on trust. Bind them
to loopback or a trusted network only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Kill any existing daemon and start a new one")

	return cmd
}

func runDaemon(ctx context.Context, force bool) error {
	bootstrap, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := logging.New(bootstrap.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	// Acquire PID file lock to prevent multiple instances
	pf := pidfile.New(bootstrap.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if !force {
			return fmt.Errorf("%w\nuse --force to kill the existing daemon", err)
		}
		logger.Warn("force mode enabled, stopping existing daemon", "pid_file", pf.Path())
		if err := pf.KillExisting(); err != nil {
			return fmt.Errorf("failed to kill existing daemon: %w", err)
		}
		if err := pf.Acquire(); err != nil {
			return fmt.Errorf("failed to acquire PID file lock after killing existing daemon: %w", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Warn("failed to release PID file", "error", err)
		}
	}()

	cfg, economy, err := config.LoadAndWatch(configPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, logger, runtimeOptions{daemon: true, economy: economy})
	if err != nil {
		return err
	}

	errCh := make(chan error, 3)

	apiMux := http.NewServeMux()
	daemon.NewDaemonServer(daemon.NewDaemonClientLocal(rt.Mediator), logger).Register(apiMux)
	apiServer := &http.Server{
		Addr:              cfg.Daemon.APIAddress,
		Handler:           apiMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("action server listening", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("action server error: %w", err)
		}
	}()

	var notifyServer *http.Server
	if rt.Hub != nil {
		go rt.Hub.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle(cfg.Daemon.NotifyPath, rt.Hub)
		notifyServer = &http.Server{
			Addr:              cfg.Daemon.NotifyAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("notification server listening", "addr", notifyServer.Addr, "path", cfg.Daemon.NotifyPath)
			if err := notifyServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("notification server error: %w", err)
			}
		}()
	}

	if cfg.Metrics.Enabled {
		metricsServer, err := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path, logger)
		if err != nil {
			_ = rt.closeDB()
			return err
		}
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	schedulerDone := make(chan error, 1)
	go func() { schedulerDone <- rt.Container.Scheduler.Run(ctx) }()

	logger.Info("factoryd ready",
		"storage", cfg.Storage.Driver,
		"tick_interval", cfg.Scheduler.TickInterval.String(),
		"pid_file", pf.Path(),
	)

	var runErr error
	select {
	case runErr = <-schedulerDone:
	case runErr = <-errCh:
		stop()
		<-schedulerDone
	case <-ctx.Done():
		runErr = <-schedulerDone
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("action server shutdown failed", "error", err)
	}
	if notifyServer != nil {
		if err := notifyServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("notification server shutdown failed", "error", err)
		}
	}
	if err := rt.Close(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	logger.Info("factoryd stopped")
	return runErr
}
