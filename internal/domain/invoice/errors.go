package invoice

import (
	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

const (
	CodeInvoiceNotFound = "INVOICE_NOT_FOUND"
	CodeAlreadyPaid     = "ALREADY_PAID"
)

var (
	ErrInvoiceNotFound = shared.NewDomainError(shared.KindValidation, CodeInvoiceNotFound, "invoice not found")
	ErrAlreadyPaid     = shared.NewDomainError(shared.KindValidation, CodeAlreadyPaid, "invoice already paid")
)

func NewInvoiceNotFoundError(id uuid.UUID) error {
	return shared.NewValidationError(CodeInvoiceNotFound, "invoice %s not found", id)
}

func NewAlreadyPaidError(id uuid.UUID) error {
	return shared.NewValidationError(CodeAlreadyPaid, "invoice %s is already paid", id)
}
