package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	factoryQuery "github.com/andrescamacho/factory-economy/internal/application/factory/queries"
)

// NewTickCommand creates the tick command. It advances the engine once
// without the daemon: finished production and upgrades complete, and any due
// assessment, overdue check or salary run executes.
func NewTickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Advance timers and run due passes once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				factories, err := mediator.Dispatch[[]*factoryQuery.FactoryDTO](ctx, rt.Mediator, &factoryQuery.ListFactoriesQuery{})
				if err != nil {
					return err
				}

				running, upgrading := 0, 0
				for _, f := range factories {
					if f.Production != nil {
						running++
					}
					if f.Upgrade != nil {
						upgrading++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Tick complete at %s: %d factories, %d producing, %d upgrading, %d records to persist\n",
					formatTime(rt.Container.Deps.Clock.Now()), len(factories), running, upgrading, rt.Store.Dirty())
				return nil
			})
		},
	}
}
