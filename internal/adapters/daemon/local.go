package daemon

import (
	"context"

	"github.com/google/uuid"

	appFactory "github.com/andrescamacho/factory-economy/internal/application/factory"
	factoryCmd "github.com/andrescamacho/factory-economy/internal/application/factory/commands"
	invoiceCmd "github.com/andrescamacho/factory-economy/internal/application/invoice/commands"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	productionCmd "github.com/andrescamacho/factory-economy/internal/application/production/commands"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	taxCmd "github.com/andrescamacho/factory-economy/internal/application/tax/commands"
	upgradeCmd "github.com/andrescamacho/factory-economy/internal/application/upgrade/commands"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// DaemonClientLocal implements Client by dispatching straight to a mediator.
// The daemon server answers HTTP calls with it, and the CLI uses it when no daemon runs.
type DaemonClientLocal struct {
	mediator mediator.Mediator
}

// NewDaemonClientLocal creates a local client over med
func NewDaemonClientLocal(med mediator.Mediator) *DaemonClientLocal {
	return &DaemonClientLocal{mediator: med}
}

func (c *DaemonClientLocal) BuyFactory(ctx context.Context, player shared.PlayerID, factoryID string) (*FactoryResponse, error) {
	resp, err := mediator.Dispatch[*factoryCmd.BuyFactoryResponse](ctx, c.mediator, &factoryCmd.BuyFactoryCommand{
		PlayerID:  player,
		FactoryID: factoryID,
	})
	if err != nil {
		return nil, err
	}
	return &FactoryResponse{
		FactoryID: resp.Factory.ID(),
		Price:     resp.Factory.Price(),
		Level:     resp.Factory.Level(),
		Status:    resp.Factory.Status().String(),
	}, nil
}

func (c *DaemonClientLocal) SellFactory(ctx context.Context, player shared.PlayerID, factoryID string) (*SaleResponse, error) {
	result, err := mediator.Dispatch[*appFactory.SaleResult](ctx, c.mediator, &factoryCmd.SellFactoryCommand{
		PlayerID:  player,
		FactoryID: factoryID,
	})
	if err != nil {
		return nil, err
	}
	return &SaleResponse{FactoryID: result.FactoryID, Refund: result.Refund}, nil
}

func (c *DaemonClientLocal) StartProduction(ctx context.Context, player shared.PlayerID, factoryID, recipeID string) (*ProductionResponse, error) {
	resp, err := mediator.Dispatch[*productionCmd.StartProductionResponse](ctx, c.mediator, &productionCmd.StartProductionCommand{
		PlayerID:  player,
		FactoryID: factoryID,
		RecipeID:  recipeID,
	})
	if err != nil {
		return nil, err
	}
	return &ProductionResponse{
		FactoryID:   resp.FactoryID,
		RecipeID:    resp.RecipeID,
		Duration:    resp.Duration,
		CompletesAt: resp.CompletesAt,
	}, nil
}

func (c *DaemonClientLocal) StartUpgrade(ctx context.Context, player shared.PlayerID, factoryID string) (*UpgradeResponse, error) {
	resp, err := mediator.Dispatch[*upgradeCmd.StartUpgradeResponse](ctx, c.mediator, &upgradeCmd.StartUpgradeCommand{
		PlayerID:  player,
		FactoryID: factoryID,
	})
	if err != nil {
		return nil, err
	}
	return &UpgradeResponse{
		FactoryID:   resp.FactoryID,
		TargetLevel: resp.TargetLevel,
		Duration:    resp.Duration,
		CompletesAt: resp.CompletesAt,
	}, nil
}

func (c *DaemonClientLocal) PayTax(ctx context.Context, player shared.PlayerID, factoryID string) (*TaxPaymentResponse, error) {
	resp, err := mediator.Dispatch[*taxCmd.PayTaxResponse](ctx, c.mediator, &taxCmd.PayTaxCommand{
		PlayerID:  player,
		FactoryID: factoryID,
	})
	if err != nil {
		return nil, err
	}
	payment := paymentResponse(resp.Payment)
	return &payment, nil
}

func (c *DaemonClientLocal) PayAllTaxes(ctx context.Context, player shared.PlayerID) (*PayAllResponse, error) {
	result, err := mediator.Dispatch[*tax.PayAllResult](ctx, c.mediator, &taxCmd.PayAllTaxesCommand{PlayerID: player})
	if err != nil {
		return nil, err
	}

	resp := &PayAllResponse{
		Paid:      make([]TaxPaymentResponse, 0, len(result.Paid)),
		Failures:  make([]PayFailureResponse, 0, len(result.Failures)),
		TotalPaid: result.TotalPaid(),
	}
	for _, p := range result.Paid {
		resp.Paid = append(resp.Paid, paymentResponse(p))
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, PayFailureResponse{
			FactoryID: f.FactoryID,
			Code:      shared.CodeOf(f.Err),
			Message:   f.Err.Error(),
		})
	}
	return resp, nil
}

func (c *DaemonClientLocal) PayInvoice(ctx context.Context, player shared.PlayerID, invoiceID uuid.UUID) (*InvoicePaymentResponse, error) {
	resp, err := mediator.Dispatch[*invoiceCmd.PayInvoiceResponse](ctx, c.mediator, &invoiceCmd.PayInvoiceCommand{
		PlayerID:  player,
		InvoiceID: invoiceID,
	})
	if err != nil {
		return nil, err
	}
	return &InvoicePaymentResponse{
		InvoiceID: resp.Invoice.ID().String(),
		Type:      resp.Invoice.Type().String(),
		Amount:    resp.Invoice.Amount(),
	}, nil
}

func paymentResponse(p *domainTax.Payment) TaxPaymentResponse {
	return TaxPaymentResponse{
		ReceiptID: p.ID.String(),
		FactoryID: p.FactoryID,
		Amount:    p.Amount,
	}
}
