package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/factory-economy/internal/adapters/daemon"
	"github.com/andrescamacho/factory-economy/internal/application/invoice"
	invoiceCmd "github.com/andrescamacho/factory-economy/internal/application/invoice/commands"
	invoiceQuery "github.com/andrescamacho/factory-economy/internal/application/invoice/queries"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
)

// NewInvoiceCommand creates the invoice command with subcommands
func NewInvoiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Inspect and pay invoices",
		Long: `Inspect and pay the invoices issued to a player.

Salary invoices are issued on a schedule for every staffed factory. Tax is
tracked per factory; the liabilities view merges both.

Examples:
  factoryd invoice list --type SALARY --unpaid
  factoryd invoice pay 6f1c3e4a-...
  factoryd invoice liabilities --unpaid`,
	}

	cmd.AddCommand(newInvoiceListCommand())
	cmd.AddCommand(newInvoicePayCommand())
	cmd.AddCommand(newInvoiceLiabilitiesCommand())
	cmd.AddCommand(newInvoiceSalaryRunCommand())

	return cmd
}

func newInvoiceListCommand() *cobra.Command {
	var (
		typeFlag string
		paid     bool
		unpaid   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the acting player's invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			if paid && unpaid {
				return fmt.Errorf("--paid and --unpaid are mutually exclusive")
			}

			query := &invoiceQuery.ListInvoicesQuery{Owner: player}
			if typeFlag != "" {
				t, err := domainInvoice.ParseType(typeFlag)
				if err != nil {
					return err
				}
				query.Type = &t
			}
			if paid || unpaid {
				query.Paid = &paid
			}

			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				invoices, err := mediator.Dispatch[[]*domainInvoice.Invoice](ctx, rt.Mediator, query)
				if err != nil {
					return err
				}
				if len(invoices) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No invoices")
					return nil
				}

				now := rt.Container.Deps.Clock.Now()
				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tTYPE\tFACTORY\tAMOUNT\tDUE DATE\tSTATUS")
				for _, inv := range invoices {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						inv.ID(), inv.Type().Label(), inv.FactoryID(), formatMoney(inv.Amount()),
						formatTime(inv.DueDate()), invoiceStatus(inv.Paid(), inv.IsOverdue(now)))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "Only invoices of this type (TAX or SALARY)")
	cmd.Flags().BoolVar(&paid, "paid", false, "Only paid invoices")
	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "Only unpaid invoices")

	return cmd
}

func newInvoicePayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Pay one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid invoice id: %w", err)
			}

			return withActions(cmd, func(ctx context.Context, client daemon.Client) error {
				resp, err := client.PayInvoice(ctx, player, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Paid %s invoice %s: %s\n",
					resp.Type, resp.InvoiceID, formatMoney(resp.Amount))
				return nil
			})
		},
	}
}

func newInvoiceLiabilitiesCommand() *cobra.Command {
	var unpaid bool

	cmd := &cobra.Command{
		Use:   "liabilities",
		Short: "List tax balances and invoices together",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withRuntime(cmd, false, func(ctx context.Context, rt *Runtime) error {
				resp, err := mediator.Dispatch[*invoiceQuery.ListLiabilitiesResponse](ctx, rt.Mediator, &invoiceQuery.ListLiabilitiesQuery{
					Owner:      player,
					UnpaidOnly: unpaid,
				})
				if err != nil {
					return err
				}
				if len(resp.Liabilities) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No liabilities")
					return nil
				}

				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "TYPE\tREFERENCE\tFACTORY\tAMOUNT\tDUE DATE\tSTATUS")
				for _, l := range resp.Liabilities {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						l.Type.Label(), l.Reference, l.FactoryID, formatMoney(l.Amount),
						formatTime(l.DueDate), invoiceStatus(l.Paid, l.Overdue))
				}
				fmt.Fprintf(w, "\t\tUNPAID\t%s\t\t\n", formatMoney(resp.TotalUnpaid))
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "Only unpaid liabilities")

	return cmd
}

func newInvoiceSalaryRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "salary-run",
		Short: "Issue salary invoices now (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, rt *Runtime) error {
				report, err := mediator.Dispatch[*invoice.SalaryReport](ctx, rt.Mediator, &invoiceCmd.RunSalaryCommand{})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Issued %d salary invoices, %s in total\n", report.Issued, formatMoney(report.Total))
				return nil
			})
		},
	}
}

func invoiceStatus(paid, overdue bool) string {
	switch {
	case paid:
		return "PAID"
	case overdue:
		return "OVERDUE"
	default:
		return "OPEN"
	}
}
