package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/adapters/daemon"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/config"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/logging"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/pidfile"
)

// resolvePlayer returns the acting player.
// Priority: --player flag > user config default
func resolvePlayer() (shared.PlayerID, error) {
	if playerFlag != "" {
		player, err := shared.ParsePlayerID(playerFlag)
		if err != nil {
			return shared.PlayerID{}, fmt.Errorf("invalid --player: %w", err)
		}
		return player, nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return shared.PlayerID{}, fmt.Errorf("no player specified and failed to load user config: %w", err)
	}
	player, ok, err := userConfigHandler.DefaultPlayer()
	if err != nil {
		return shared.PlayerID{}, fmt.Errorf("no player specified and failed to load user config: %w", err)
	}
	if !ok {
		return shared.PlayerID{}, fmt.Errorf("no player specified: use --player, or set a default with 'factoryd config set-player'")
	}
	return player, nil
}

// cliLogger keeps stdout for command output: logs go to stderr and only
// warnings show unless --verbose is set
func cliLogger(cfg *config.Config) *slog.Logger {
	logCfg := cfg.Logging
	logCfg.Format = "text"
	if !verbose {
		logCfg.Level = "warn"
	}
	return logging.NewWithWriter(logCfg, os.Stderr)
}

// withRuntime opens the engine for one command. Mutating commands first catch
// up on elapsed timers and due passes, and persist everything afterwards.
func withRuntime(cmd *cobra.Command, mutating bool, fn func(ctx context.Context, rt *Runtime) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if mutating {
		if pid, running := pidfile.New(cfg.Daemon.PIDFile).Running(); running {
			return fmt.Errorf("factoryd is running (PID %d); admin commands need it stopped", pid)
		}
	}

	logger := cliLogger(cfg)
	ctx := common.WithLogger(cmd.Context(), logger)

	rt, err := newRuntime(ctx, cfg, logger, runtimeOptions{})
	if err != nil {
		return err
	}

	if !mutating {
		defer func() { _ = rt.closeDB() }()
		return fn(ctx, rt)
	}

	if err := rt.Container.Scheduler.RunOnce(ctx); err != nil {
		_ = rt.closeDB()
		return fmt.Errorf("failed to catch up engine state: %w", err)
	}
	runErr := fn(ctx, rt)
	return errors.Join(runErr, rt.Close(context.WithoutCancel(ctx)))
}

// withActions runs a player action. While factoryd runs the action goes to its
// action endpoint and is applied on the live scheduler loop; otherwise the engine
// is opened in-process like any other mutating command.
func withActions(cmd *cobra.Command, fn func(ctx context.Context, client daemon.Client) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if pid, running := pidfile.New(cfg.Daemon.PIDFile).Running(); running {
		ctx := common.WithLogger(cmd.Context(), cliLogger(cfg))
		client := daemon.NewDaemonClient(cfg.Daemon.APIAddress)
		if err := client.Health(ctx); err != nil {
			return fmt.Errorf("factoryd is running (PID %d) but its action endpoint is unreachable: %w", pid, err)
		}
		return fn(ctx, client)
	}

	return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
		return fn(ctx, daemon.NewDaemonClientLocal(rt.Mediator))
	})
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatMoney(m shared.Money) string {
	return m.StringFixed(2)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
