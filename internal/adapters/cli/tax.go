package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/adapters/daemon"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	taxCmd "github.com/andrescamacho/factory-economy/internal/application/tax/commands"
	taxQuery "github.com/andrescamacho/factory-economy/internal/application/tax/queries"
)

// NewTaxCommand creates the tax command with subcommands
func NewTaxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Inspect and pay factory taxes",
		Long: `Inspect and pay the taxes assessed on owned factories.

Tax accrues on every assessment pass and falls due after the configured
period. An overdue balance is charged a one-time late fee.

Examples:
  factoryd tax list
  factoryd tax show smelter-1
  factoryd tax pay smelter-1
  factoryd tax pay-all
  factoryd tax history --limit 10`,
	}

	cmd.AddCommand(newTaxShowCommand())
	cmd.AddCommand(newTaxListCommand())
	cmd.AddCommand(newTaxPayCommand())
	cmd.AddCommand(newTaxPayAllCommand())
	cmd.AddCommand(newTaxHistoryCommand())
	cmd.AddCommand(newTaxAssessCommand())
	cmd.AddCommand(newTaxCheckOverdueCommand())

	return cmd
}

func newTaxShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <factory-id>",
		Short: "Show the tax record of a factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				r, err := mediator.Dispatch[*taxQuery.TaxRecordDTO](ctx, rt.Mediator, &taxQuery.GetTaxRecordQuery{FactoryID: args[0]})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Tax record %s\n", r.FactoryID)
				fmt.Fprintf(out, "  Owner:           %s\n", r.Owner)
				fmt.Fprintf(out, "  Amount due:      %s\n", formatMoney(r.AmountDue))
				fmt.Fprintf(out, "  State:           %s\n", r.State)
				fmt.Fprintf(out, "  Last assessment: %s\n", formatTime(r.LastAssessment))
				fmt.Fprintf(out, "  Due date:        %s\n", formatTime(r.DueDate))
				fmt.Fprintf(out, "  Late fee:        %s\n", yesNo(r.LateFeeApplied))
				return nil
			})
		},
	}
}

func newTaxListCommand() *cobra.Command {
	var outstanding bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the acting player's tax records",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				records, err := mediator.Dispatch[[]*taxQuery.TaxRecordDTO](ctx, rt.Mediator, &taxQuery.ListTaxRecordsQuery{
					Owner:           player,
					OutstandingOnly: outstanding,
				})
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tax records")
					return nil
				}

				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "FACTORY\tDUE\tSTATE\tDUE DATE\tLATE FEE")
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						r.FactoryID, formatMoney(r.AmountDue), r.State, formatTime(r.DueDate), yesNo(r.LateFeeApplied))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&outstanding, "outstanding", false, "Only records with a balance")

	return cmd
}

func newTaxPayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <factory-id>",
		Short: "Pay the full tax balance of one factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withActions(cmd, func(ctx context.Context, client daemon.Client) error {
				resp, err := client.PayTax(ctx, player, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Paid %s tax on %s (receipt %s)\n",
					formatMoney(resp.Amount), resp.FactoryID, resp.ReceiptID)
				return nil
			})
		},
	}
}

func newTaxPayAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pay-all",
		Short: "Pay every outstanding tax balance, oldest due first",
		Long: `Pay every outstanding tax balance of the acting player, oldest due date
first. Payments are independent: a factory that cannot be paid is reported
and the rest are still settled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withActions(cmd, func(ctx context.Context, client daemon.Client) error {
				result, err := client.PayAllTaxes(ctx, player)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(result.Paid) == 0 && len(result.Failures) == 0 {
					fmt.Fprintln(out, "Nothing due")
					return nil
				}
				for _, p := range result.Paid {
					fmt.Fprintf(out, "✓ %s: paid %s\n", p.FactoryID, formatMoney(p.Amount))
				}
				for _, f := range result.Failures {
					fmt.Fprintf(out, "✗ %s: %s\n", f.FactoryID, f.Message)
				}
				fmt.Fprintf(out, "\nTotal paid: %s\n", formatMoney(result.TotalPaid))
				if len(result.Failures) > 0 {
					return fmt.Errorf("%d tax balance(s) could not be paid", len(result.Failures))
				}
				return nil
			})
		},
	}
}

func newTaxHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List tax receipts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				resp, err := mediator.Dispatch[*taxQuery.GetPaymentHistoryResponse](ctx, rt.Mediator, &taxQuery.GetPaymentHistoryQuery{
					Owner: player,
					Limit: limit,
				})
				if err != nil {
					return err
				}
				if len(resp.Payments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tax payments")
					return nil
				}

				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "TIME\tFACTORY\tAMOUNT\tRECEIPT")
				for _, p := range resp.Payments {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatTime(p.Timestamp), p.FactoryID, formatMoney(p.Amount), p.ID)
				}
				fmt.Fprintf(w, "\t\t%s\t\n", formatMoney(resp.Total))
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of receipts (0 = all)")

	return cmd
}

func newTaxAssessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assess",
		Short: "Run an assessment pass now (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				report, err := mediator.Dispatch[*tax.AssessReport](ctx, rt.Mediator, &taxCmd.RunAssessmentCommand{})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Assessed %d factories, %s in total\n", report.Assessed, formatMoney(report.Total))
				return nil
			})
		},
	}
}

func newTaxCheckOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-overdue",
		Short: "Run an overdue check now (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				report, err := mediator.Dispatch[*tax.OverdueReport](ctx, rt.Mediator, &taxCmd.RunOverdueCheckCommand{})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %d newly overdue, %d late fees, %d healed, %s outstanding\n",
					report.NewlyOverdue, report.LateFees, report.Healed, formatMoney(report.Outstanding))
				return nil
			})
		},
	}
}
