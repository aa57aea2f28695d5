package tax

import "github.com/andrescamacho/factory-economy/internal/domain/shared"

const (
	CodeRecordNotFound = "TAX_RECORD_NOT_FOUND"
	CodeNothingDue     = "NOTHING_DUE"
)

var (
	ErrRecordNotFound = shared.NewDomainError(shared.KindValidation, CodeRecordNotFound, "tax record not found")
	ErrNothingDue     = shared.NewDomainError(shared.KindValidation, CodeNothingDue, "nothing due")
)

func NewRecordNotFoundError(factoryID string) error {
	return shared.NewValidationError(CodeRecordNotFound, "no tax record for factory %s", factoryID)
}

func NewNothingDueError(factoryID string) error {
	return shared.NewValidationError(CodeNothingDue, "factory %s has no tax due", factoryID)
}
