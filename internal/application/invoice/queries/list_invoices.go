package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ListInvoicesQuery lists an owner's invoices. Nil filters match everything.
type ListInvoicesQuery struct {
	Owner shared.PlayerID
	Type  *domainInvoice.Type
	Paid  *bool
}

type ListInvoicesHandler struct {
	invoices domainInvoice.InvoiceRepository
}

func NewListInvoicesHandler(invoices domainInvoice.InvoiceRepository) *ListInvoicesHandler {
	return &ListInvoicesHandler{invoices: invoices}
}

func (h *ListInvoicesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListInvoicesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListInvoicesQuery")
	}

	invoices, err := h.invoices.ListByOwner(ctx, query.Owner, domainInvoice.Filter{Type: query.Type, Paid: query.Paid})
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}
