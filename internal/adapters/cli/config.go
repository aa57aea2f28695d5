package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage factory economy configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (FE_* prefix, e.g. FE_ECONOMY_TAX_BASE_RATE)
2. Config file (config.yaml)
3. Default values

User preferences (default player) are stored in ~/.factory-economy/config.json

Examples:
  factoryd config show
  factoryd config set-player 6f1c2f9e-2b7a-4f0e-9d59-1f6f0f0f8a11
  factoryd config clear-player`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetPlayerCommand())
	cmd.AddCommand(newConfigClearPlayerCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.Default()
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			if userCfg.DefaultPlayer != "" {
				fmt.Fprintf(out, "  Default Player:   %s\n", userCfg.DefaultPlayer)
			} else {
				fmt.Fprintln(out, "  Default Player:   (not set)")
			}

			fmt.Fprintln(out, "\nStorage:")
			fmt.Fprintf(out, "  Driver:           %s\n", cfg.Storage.Driver)
			if cfg.Storage.Driver == "yaml" {
				fmt.Fprintf(out, "  Root:             %s\n", cfg.Storage.Root)
			} else {
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Type)
				if cfg.Database.URL != "" {
					fmt.Fprintf(out, "  URL:              %s\n", maskSecret(cfg.Database.URL))
				} else if cfg.Database.Type == "sqlite" {
					fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
				} else {
					fmt.Fprintf(out, "  Host:             %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
				}
			}
			fmt.Fprintf(out, "  Host state:       %s\n", cfg.Host.StateFile)

			fmt.Fprintln(out, "\nScheduler:")
			fmt.Fprintf(out, "  Tick:             %s\n", cfg.Scheduler.TickInterval)
			fmt.Fprintf(out, "  Flush:            %s\n", cfg.Scheduler.FlushInterval)

			e := cfg.Economy
			fmt.Fprintln(out, "\nEconomy:")
			fmt.Fprintf(out, "  Max level:        %d\n", e.Upgrade.MaxLevel)
			fmt.Fprintf(out, "  Level speedup:    %.2f per level\n", e.Production.LevelTimeReduction)
			fmt.Fprintf(out, "  Upgrade cost:     price x %.2f x level\n", e.Upgrade.CostFactor)
			fmt.Fprintf(out, "  Tax rate:         %.4f + %.4f per level\n", e.Tax.BaseRate, e.Tax.LevelMultiplier)
			fmt.Fprintf(out, "  Late fee:         %.4f\n", e.Tax.LateFeeRate)
			fmt.Fprintf(out, "  Tax due after:    %s\n", e.Tax.DuePeriod)
			fmt.Fprintf(out, "  Assess every:     %s\n", e.Tax.AssessInterval)
			fmt.Fprintf(out, "  Overdue check:    %s\n", e.Tax.OverdueCheckInterval)
			fmt.Fprintf(out, "  Salary:           enabled=%s every %s\n", yesNo(e.Salary.Enabled), e.Salary.Interval)
			fmt.Fprintf(out, "  Sell refund:      %.2f\n", e.Market.SellRefundRate)

			fmt.Fprintln(out, "\nDaemon:")
			fmt.Fprintf(out, "  PID file:         %s\n", cfg.Daemon.PIDFile)
			if cfg.Daemon.NotifyAddress != "" {
				fmt.Fprintf(out, "  Notifications:    ws://%s%s\n", cfg.Daemon.NotifyAddress, cfg.Daemon.NotifyPath)
			}
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  Metrics:          %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

// newConfigSetPlayerCommand creates the config set-player subcommand
func newConfigSetPlayerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-player <player-id>",
		Short: "Set default player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := shared.ParsePlayerID(args[0])
			if err != nil {
				return err
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultPlayer(player); err != nil {
				return fmt.Errorf("failed to set default player: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default player set successfully")
			fmt.Fprintf(cmd.OutOrStdout(), "  Player: %s\n", player)
			return nil
		},
	}

	return cmd
}

// newConfigClearPlayerCommand creates the config clear-player subcommand
func newConfigClearPlayerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-player",
		Short: "Clear default player setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultPlayer(); err != nil {
				return fmt.Errorf("failed to clear default player: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default player cleared")
			return nil
		},
	}

	return cmd
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
