package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/adapters/daemon"
	factoryCmd "github.com/andrescamacho/factory-economy/internal/application/factory/commands"
	factoryQuery "github.com/andrescamacho/factory-economy/internal/application/factory/queries"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	upgradeQuery "github.com/andrescamacho/factory-economy/internal/application/upgrade/queries"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// NewFactoryCommand creates the factory command with subcommands
func NewFactoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factory",
		Short: "Buy, run and upgrade factories",
		Long: `Manage factories: the market (buy, sell), production, upgrades and the
admin operations that create, remove or re-level factories.

Examples:
  factoryd factory list --mine
  factoryd factory get smelter-1
  factoryd factory buy smelter-1
  factoryd factory produce smelter-1 iron_ingot
  factoryd factory upgrade smelter-1
  factoryd factory create smelter-1 --zone north --type SMELTER --price 1000`,
	}

	cmd.AddCommand(newFactoryListCommand())
	cmd.AddCommand(newFactoryGetCommand())
	cmd.AddCommand(newFactoryRecipesCommand())
	cmd.AddCommand(newFactoryCreateCommand())
	cmd.AddCommand(newFactoryRemoveCommand())
	cmd.AddCommand(newFactorySetLevelCommand())
	cmd.AddCommand(newFactoryBuyCommand())
	cmd.AddCommand(newFactorySellCommand())
	cmd.AddCommand(newFactoryFastTravelCommand())
	cmd.AddCommand(newFactoryProduceCommand())
	cmd.AddCommand(newFactoryQuoteCommand())
	cmd.AddCommand(newFactoryUpgradeCommand())

	return cmd
}

func newFactoryListCommand() *cobra.Command {
	var (
		owner string
		mine  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List factories",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &factoryQuery.ListFactoriesQuery{}
			switch {
			case mine:
				player, err := resolvePlayer()
				if err != nil {
					return err
				}
				query.Owner = &player
			case owner != "":
				player, err := shared.ParsePlayerID(owner)
				if err != nil {
					return err
				}
				query.Owner = &player
			}

			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				dtos, err := mediator.Dispatch[[]*factoryQuery.FactoryDTO](ctx, rt.Mediator, query)
				if err != nil {
					return err
				}
				if len(dtos) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No factories found")
					return nil
				}

				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tTYPE\tZONE\tLEVEL\tSTATUS\tOWNER\tPRICE\tWORK")
				for _, f := range dtos {
					owner := f.Owner
					if owner == "" {
						owner = "-"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
						f.ID, f.Type, f.Zone, f.Level, f.Status, owner, formatMoney(f.Price), workSummary(f))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Only factories owned by this player")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only factories owned by the acting player")

	return cmd
}

func workSummary(f *factoryQuery.FactoryDTO) string {
	switch {
	case f.Production != nil && f.Upgrade != nil:
		return fmt.Sprintf("%s %.0f%%, upgrading", f.Production.RecipeID, f.Production.Progress*100)
	case f.Production != nil:
		return fmt.Sprintf("%s %.0f%%", f.Production.RecipeID, f.Production.Progress*100)
	case f.Upgrade != nil:
		return fmt.Sprintf("upgrading to %d", f.Upgrade.TargetLevel)
	default:
		return "-"
	}
}

func newFactoryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <factory-id>",
		Short: "Show one factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				f, err := mediator.Dispatch[*factoryQuery.FactoryDTO](ctx, rt.Mediator, &factoryQuery.GetFactoryQuery{FactoryID: args[0]})
				if err != nil {
					return err
				}
				printFactory(cmd.OutOrStdout(), f)
				return nil
			})
		},
	}
}

func printFactory(out io.Writer, f *factoryQuery.FactoryDTO) {
	owner := f.Owner
	if owner == "" {
		owner = "(unowned)"
	}
	fmt.Fprintf(out, "Factory %s\n", f.ID)
	fmt.Fprintf(out, "  Type:        %s\n", f.Type)
	fmt.Fprintf(out, "  Zone:        %s\n", f.Zone)
	fmt.Fprintf(out, "  Owner:       %s\n", owner)
	fmt.Fprintf(out, "  Price:       %s\n", formatMoney(f.Price))
	fmt.Fprintf(out, "  Level:       %d\n", f.Level)
	fmt.Fprintf(out, "  Status:      %s\n", f.Status)
	if f.Anchor != nil {
		fmt.Fprintf(out, "  Fast travel: %s\n", f.Anchor)
	}
	if p := f.Production; p != nil {
		fmt.Fprintf(out, "  Production:  %s %.1f%% (%s left, done %s)\n",
			p.RecipeID, p.Progress*100, formatDuration(p.Remaining), formatTime(p.CompletesAt))
	}
	if u := f.Upgrade; u != nil {
		fmt.Fprintf(out, "  Upgrade:     to level %d (%s left)\n", u.TargetLevel, formatDuration(u.Remaining))
	}
}

func newFactoryRecipesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the recipe catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tNAME\tFACTORIES\tINPUTS\tOUTPUTS\tDURATION")
				for _, r := range rt.Container.Deps.Catalog.All() {
					types := "any"
					if len(r.FactoryTypes) > 0 {
						types = fmt.Sprint(r.FactoryTypes)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						r.ID, r.Name, types, formatAmounts(r.Inputs), formatAmounts(r.Outputs), r.BaseDuration)
				}
				return w.Flush()
			})
		},
	}
}

func formatAmounts(amounts []factory.ResourceAmount) string {
	if len(amounts) == 0 {
		return "-"
	}
	s := ""
	for i, a := range amounts {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%dx %s", a.Quantity, a.ResourceID)
	}
	return s
}

func newFactoryCreateCommand() *cobra.Command {
	var (
		zone  string
		typ   string
		price string
	)

	cmd := &cobra.Command{
		Use:   "create <factory-id>",
		Short: "Register a new factory on the market (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			factoryType, err := factory.ParseType(typ)
			if err != nil {
				return err
			}
			amount, err := shared.ParseMoney(price)
			if err != nil {
				return fmt.Errorf("invalid --price: %w", err)
			}

			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				f, err := mediator.Dispatch[*factory.Factory](ctx, rt.Mediator, &factoryCmd.CreateFactoryCommand{
					FactoryID: args[0],
					Zone:      zone,
					Type:      factoryType,
					Price:     amount,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Factory %s created (%s, price %s)\n", f.ID(), f.Type(), formatMoney(f.Price()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "Zone the factory belongs to")
	cmd.Flags().StringVar(&typ, "type", "", "Factory type (SMELTER, MILL, REFINERY, WORKSHOP, ASSEMBLY)")
	cmd.Flags().StringVar(&price, "price", "", "Purchase price")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newFactoryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <factory-id>",
		Short: "Delete a factory with its storage and tax record (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				if _, err := rt.Mediator.Send(ctx, &factoryCmd.RemoveFactoryCommand{FactoryID: args[0]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Factory %s removed\n", args[0])
				return nil
			})
		},
	}
}

func newFactorySetLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-level <factory-id> <level>",
		Short: "Override a factory level, cancelling any upgrade (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid level %q", args[1])
			}
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				f, err := mediator.Dispatch[*factory.Factory](ctx, rt.Mediator, &factoryCmd.SetFactoryLevelCommand{
					FactoryID: args[0],
					Level:     level,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Factory %s is now level %d\n", f.ID(), f.Level())
				return nil
			})
		},
	}
}

func newFactoryBuyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <factory-id>",
		Short: "Buy an unowned factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withActions(cmd, func(ctx context.Context, client daemon.Client) error {
				resp, err := client.BuyFactory(ctx, player, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Bought factory %s for %s\n", resp.FactoryID, formatMoney(resp.Price))
				return nil
			})
		},
	}
}

func newFactorySellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sell <factory-id>",
		Short: "Sell a factory back to the market",
		Long: `Sell a factory back to the market for a share of its price.

Running production and upgrades are cancelled and the factory storage is
emptied. Sale is refused while the factory has unpaid tax.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withActions(cmd, func(ctx context.Context, client daemon.Client) error {
				result, err := client.SellFactory(ctx, player, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Sold factory %s, refunded %s\n", result.FactoryID, formatMoney(result.Refund))
				return nil
			})
		},
	}
}

func newFactoryFastTravelCommand() *cobra.Command {
	var (
		anchor factory.Location
		clear  bool
	)

	cmd := &cobra.Command{
		Use:   "fast-travel <factory-id>",
		Short: "Set or clear the fast-travel anchor of an owned factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}

			command := &factoryCmd.SetFastTravelCommand{PlayerID: player, FactoryID: args[0]}
			if !clear {
				if anchor.World == "" {
					return fmt.Errorf("--world is required unless --clear is set")
				}
				command.Anchor = &anchor
			}

			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				f, err := mediator.Dispatch[*factory.Factory](ctx, rt.Mediator, command)
				if err != nil {
					return err
				}
				if f.Anchor() == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "✓ Fast travel cleared for %s\n", f.ID())
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "✓ Fast travel for %s set to %s\n", f.ID(), f.Anchor())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&anchor.World, "world", "", "World name")
	cmd.Flags().Float64Var(&anchor.X, "x", 0, "X coordinate")
	cmd.Flags().Float64Var(&anchor.Y, "y", 0, "Y coordinate")
	cmd.Flags().Float64Var(&anchor.Z, "z", 0, "Z coordinate")
	cmd.Flags().Float32Var(&anchor.Yaw, "yaw", 0, "Yaw")
	cmd.Flags().Float32Var(&anchor.Pitch, "pitch", 0, "Pitch")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the anchor")

	return cmd
}

func newFactoryProduceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "produce <factory-id> <recipe-id>",
		Short: "Start a production run",
		Long: `Start a recipe on an owned factory. The recipe inputs are taken from the
factory storage at once; outputs are credited when the run completes.

A factory without the required inputs is marked NO_PARTS.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withActions(cmd, func(ctx context.Context, client daemon.Client) error {
				resp, err := client.StartProduction(ctx, player, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Producing %s on %s\n", resp.RecipeID, resp.FactoryID)
				fmt.Fprintf(cmd.OutOrStdout(), "  Duration:  %s\n", formatDuration(resp.Duration))
				fmt.Fprintf(cmd.OutOrStdout(), "  Completes: %s\n", formatTime(resp.CompletesAt))
				return nil
			})
		},
	}
}

func newFactoryQuoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <factory-id>",
		Short: "Price the next upgrade without starting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				quote, err := mediator.Dispatch[*upgrade.Quote](ctx, rt.Mediator, &upgradeQuery.GetUpgradeQuoteQuery{FactoryID: args[0]})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Upgrade %s to level %d\n", args[0], quote.TargetLevel)
				fmt.Fprintf(out, "  Cost:      %s\n", formatMoney(quote.Cost))
				fmt.Fprintf(out, "  Duration:  %s\n", formatDuration(quote.Duration))
				fmt.Fprintf(out, "  Materials: %s\n", formatAmounts(quote.Materials))
				return nil
			})
		},
	}
}

func newFactoryUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <factory-id>",
		Short: "Start the next level-up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withActions(cmd, func(ctx context.Context, client daemon.Client) error {
				resp, err := client.StartUpgrade(ctx, player, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Upgrading %s to level %d\n", resp.FactoryID, resp.TargetLevel)
				fmt.Fprintf(cmd.OutOrStdout(), "  Completes: %s\n", formatTime(resp.CompletesAt))
				return nil
			})
		},
	}
}
