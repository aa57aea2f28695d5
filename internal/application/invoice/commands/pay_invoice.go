package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/invoice"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// PayInvoiceCommand pays one invoice
type PayInvoiceCommand struct {
	PlayerID  shared.PlayerID
	InvoiceID uuid.UUID
}

type PayInvoiceResponse struct {
	Invoice *domainInvoice.Invoice
}

type PayInvoiceHandler struct {
	ledger     *invoice.Ledger
	serializer common.Serializer
}

func NewPayInvoiceHandler(ledger *invoice.Ledger, serializer common.Serializer) *PayInvoiceHandler {
	return &PayInvoiceHandler{ledger: ledger, serializer: serializer}
}

func (h *PayInvoiceHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PayInvoiceCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PayInvoiceCommand")
	}

	var inv *domainInvoice.Invoice
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		inv, err = h.ledger.Pay(ctx, cmd.PlayerID, cmd.InvoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PayInvoiceResponse{Invoice: inv}, nil
}

// RunSalaryCommand issues salary invoices outside the schedule (admin)
type RunSalaryCommand struct{}

type RunSalaryHandler struct {
	ledger     *invoice.Ledger
	serializer common.Serializer
}

func NewRunSalaryHandler(ledger *invoice.Ledger, serializer common.Serializer) *RunSalaryHandler {
	return &RunSalaryHandler{ledger: ledger, serializer: serializer}
}

func (h *RunSalaryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*RunSalaryCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunSalaryCommand")
	}

	var report *invoice.SalaryReport
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		report, err = h.ledger.SalaryRun(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
