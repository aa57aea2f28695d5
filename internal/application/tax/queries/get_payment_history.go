package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// GetPaymentHistoryQuery lists an owner's tax receipts, newest first
type GetPaymentHistoryQuery struct {
	Owner shared.PlayerID
	Limit int // 0 = all
}

type GetPaymentHistoryResponse struct {
	Payments []*domainTax.Payment
	Total    shared.Money
}

type GetPaymentHistoryHandler struct {
	payments domainTax.PaymentRepository
}

func NewGetPaymentHistoryHandler(payments domainTax.PaymentRepository) *GetPaymentHistoryHandler {
	return &GetPaymentHistoryHandler{payments: payments}
}

func (h *GetPaymentHistoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetPaymentHistoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPaymentHistoryQuery")
	}

	payments, err := h.payments.ListByOwner(ctx, query.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment history: %w", err)
	}
	if query.Limit > 0 && len(payments) > query.Limit {
		payments = payments[:query.Limit]
	}

	total := shared.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return &GetPaymentHistoryResponse{Payments: payments, Total: total}, nil
}
