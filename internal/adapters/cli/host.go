package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/adapters/inmemory"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// NewHostCommand creates the host command. It edits the local stand-in for
// the game server: balances, labor, factory stock and research.
func NewHostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage the local host services (balances, labor, stock, research)",
		Long: `Manage the in-memory host services the engine charges and credits.

State is kept in the host state file and survives restarts.

Examples:
  factoryd host balance
  factoryd host deposit 5000
  factoryd host labor smelter-1 --workers 3 --reduction 0.1 --wage 40
  factoryd host stock smelter-1 iron_ore 20
  factoryd host research production_time 2`,
	}

	cmd.AddCommand(newHostBalanceCommand())
	cmd.AddCommand(newHostDepositCommand())
	cmd.AddCommand(newHostLaborCommand())
	cmd.AddCommand(newHostStockCommand())
	cmd.AddCommand(newHostResearchCommand())

	return cmd
}

func newHostBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the acting player's balance and effective buffs",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				balance, err := rt.Host.Ledger().Balance(ctx, player)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Player:  %s\n", player)
				fmt.Fprintf(out, "Balance: %s\n\n", formatMoney(balance))

				w := newTable(out)
				fmt.Fprintln(w, "BUFF\tVALUE")
				for _, key := range buff.AllKeys() {
					fmt.Fprintf(w, "%s\t%.2f%%\n", key, rt.Container.Buffs.Value(ctx, player, key)*100)
				}
				return w.Flush()
			})
		},
	}
}

func newHostDepositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Credit the acting player's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			amount, err := shared.ParseMoney(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				ledger := rt.Host.Ledger()
				if err := ledger.Deposit(ctx, player, amount); err != nil {
					return err
				}
				balance, err := ledger.Balance(ctx, player)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deposited %s, balance %s\n", formatMoney(amount), formatMoney(balance))
				return nil
			})
		},
	}
}

func newHostLaborCommand() *cobra.Command {
	var (
		workers   int
		reduction float64
		wage      string
	)

	cmd := &cobra.Command{
		Use:   "labor <factory-id>",
		Short: "Assign workers to a factory (0 workers removes them)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reduction < 0 || reduction > 1 {
				return fmt.Errorf("--reduction must be between 0 and 1")
			}
			wageAmount, err := shared.ParseMoney(wage)
			if err != nil {
				return fmt.Errorf("invalid --wage: %w", err)
			}
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				if _, err := rt.Store.Factories().Get(ctx, args[0]); err != nil {
					return err
				}
				rt.Host.Labor().Assign(args[0], inmemory.LaborAssignment{
					Workers:       workers,
					TimeReduction: reduction,
					Wage:          wageAmount,
				})
				if workers <= 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed labor from %s\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %d workers at %s (-%.0f%% time, wage %s)\n",
					workers, args[0], reduction*100, formatMoney(wageAmount))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 1, "Number of workers")
	cmd.Flags().Float64Var(&reduction, "reduction", 0, "Fraction of production time removed (0-1)")
	cmd.Flags().StringVar(&wage, "wage", "0", "Wage per salary period")

	return cmd
}

func newHostStockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stock <factory-id> <resource> <quantity>",
		Short: "Add input stock to a factory",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[2])
			if err != nil || qty <= 0 {
				return fmt.Errorf("quantity must be a positive integer")
			}
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				if _, err := rt.Store.Factories().Get(ctx, args[0]); err != nil {
					return err
				}
				storage := rt.Host.Storage()
				storage.AddInput(args[0], args[1], qty)
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s now holds %d %s (output %d)\n",
					args[0], storage.Input(args[0], args[1]), args[1], storage.Output(args[0], args[1]))
				return nil
			})
		},
	}
}

func newHostResearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "research <buff-key> <level>",
		Short: "Set a completed research level for the acting player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			key, err := buff.ParseKey(args[0])
			if err != nil {
				return err
			}
			level, err := strconv.Atoi(args[1])
			if err != nil || level < 0 {
				return fmt.Errorf("level must be a non-negative integer")
			}
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				rt.Host.Research().SetLevel(player, key, level)
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s research at level %d (%.2f%%)\n",
					key, level, rt.Container.Buffs.Value(ctx, player, key)*100)
				return nil
			})
		},
	}
}
