package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// GetTaxRecordQuery reads the tax record of a factory
type GetTaxRecordQuery struct {
	FactoryID string
}

// TaxRecordDTO is a read-only view of a tax record
type TaxRecordDTO struct {
	FactoryID      string
	Owner          shared.PlayerID
	AmountDue      shared.Money
	LastAssessment time.Time
	DueDate        time.Time
	Overdue        bool
	LateFeeApplied bool
	State          domainTax.State
}

// NewTaxRecordDTO converts a record to its read view
func NewTaxRecordDTO(r *domainTax.Record) *TaxRecordDTO {
	return &TaxRecordDTO{
		FactoryID:      r.FactoryID(),
		Owner:          r.Owner(),
		AmountDue:      r.AmountDue(),
		LastAssessment: r.LastAssessment(),
		DueDate:        r.DueDate(),
		Overdue:        r.Overdue(),
		LateFeeApplied: r.LateFeeApplied(),
		State:          r.State(),
	}
}

type GetTaxRecordHandler struct {
	records domainTax.RecordRepository
}

func NewGetTaxRecordHandler(records domainTax.RecordRepository) *GetTaxRecordHandler {
	return &GetTaxRecordHandler{records: records}
}

func (h *GetTaxRecordHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetTaxRecordQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetTaxRecordQuery")
	}

	record, err := h.records.Get(ctx, query.FactoryID)
	if err != nil {
		return nil, err
	}
	return NewTaxRecordDTO(record), nil
}

// ListTaxRecordsQuery lists an owner's tax records
type ListTaxRecordsQuery struct {
	Owner           shared.PlayerID
	OutstandingOnly bool
}

type ListTaxRecordsHandler struct {
	records domainTax.RecordRepository
}

func NewListTaxRecordsHandler(records domainTax.RecordRepository) *ListTaxRecordsHandler {
	return &ListTaxRecordsHandler{records: records}
}

func (h *ListTaxRecordsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListTaxRecordsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListTaxRecordsQuery")
	}

	records, err := h.records.ListByOwner(ctx, query.Owner)
	if err != nil {
		return nil, err
	}

	dtos := make([]*TaxRecordDTO, 0, len(records))
	for _, r := range records {
		if query.OutstandingOnly && !r.HasBalance() {
			continue
		}
		dtos = append(dtos, NewTaxRecordDTO(r))
	}
	return dtos, nil
}
