package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// LiabilitySource says which ledger a liability row comes from
type LiabilitySource string

const (
	SourceTaxRecord LiabilitySource = "TAX_RECORD"
	SourceInvoice   LiabilitySource = "INVOICE"
)

// LiabilityDTO is one row of the merged liability view
type LiabilityDTO struct {
	Source    LiabilitySource
	Type      domainInvoice.Type
	Reference string // factory id for tax records, invoice id for invoices
	FactoryID string
	Amount    shared.Money
	DueDate   time.Time
	Overdue   bool
	Paid      bool
}

// ListLiabilitiesQuery merges the owner's tax records and invoices into one view.
// Tax records are the source of truth for tax; they appear as TAX rows.
type ListLiabilitiesQuery struct {
	Owner      shared.PlayerID
	UnpaidOnly bool
}

type ListLiabilitiesResponse struct {
	Liabilities []*LiabilityDTO
	TotalUnpaid shared.Money
}

type ListLiabilitiesHandler struct {
	records  domainTax.RecordRepository
	invoices domainInvoice.InvoiceRepository
	clock    shared.Clock
}

func NewListLiabilitiesHandler(records domainTax.RecordRepository, invoices domainInvoice.InvoiceRepository, clock shared.Clock) *ListLiabilitiesHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ListLiabilitiesHandler{records: records, invoices: invoices, clock: clock}
}

func (h *ListLiabilitiesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListLiabilitiesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListLiabilitiesQuery")
	}
	now := h.clock.Now()

	records, err := h.records.ListByOwner(ctx, query.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax records: %w", err)
	}

	var filter domainInvoice.Filter
	if query.UnpaidOnly {
		unpaid := false
		filter.Paid = &unpaid
	}
	invoices, err := h.invoices.ListByOwner(ctx, query.Owner, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	response := &ListLiabilitiesResponse{TotalUnpaid: shared.Zero}

	for _, r := range records {
		if !r.HasBalance() {
			continue
		}
		response.Liabilities = append(response.Liabilities, &LiabilityDTO{
			Source:    SourceTaxRecord,
			Type:      domainInvoice.TypeTax,
			Reference: r.FactoryID(),
			FactoryID: r.FactoryID(),
			Amount:    r.AmountDue(),
			DueDate:   r.DueDate(),
			Overdue:   r.Overdue(),
		})
		response.TotalUnpaid = response.TotalUnpaid.Add(r.AmountDue())
	}

	for _, inv := range invoices {
		response.Liabilities = append(response.Liabilities, &LiabilityDTO{
			Source:    SourceInvoice,
			Type:      inv.Type(),
			Reference: inv.ID().String(),
			FactoryID: inv.FactoryID(),
			Amount:    inv.Amount(),
			DueDate:   inv.DueDate(),
			Overdue:   inv.IsOverdue(now),
			Paid:      inv.Paid(),
		})
		if !inv.Paid() {
			response.TotalUnpaid = response.TotalUnpaid.Add(inv.Amount())
		}
	}

	sort.SliceStable(response.Liabilities, func(i, j int) bool {
		return response.Liabilities[i].DueDate.Before(response.Liabilities[j].DueDate)
	})
	return response, nil
}
