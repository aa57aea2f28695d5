package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error by how callers are expected to react to it
type ErrorKind string

const (
	// KindValidation covers not-owner, not-found and conflicting-state rejections.
	// Returned before any mutation and never retried automatically.
	KindValidation ErrorKind = "VALIDATION"

	// KindResource covers insufficient funds or materials. Checked then rejected, nothing consumed.
	KindResource ErrorKind = "RESOURCE"

	// KindConsistency marks state that contradicts an invariant and gets healed on the next tick
	KindConsistency ErrorKind = "CONSISTENCY"

	// KindPersistence marks storage failures. Logged, never fatal to the tick loop.
	KindPersistence ErrorKind = "PERSISTENCE"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so sentinel values work with errors.Is
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// NewValidationError builds a KindValidation error
func NewValidationError(code, format string, args ...interface{}) *DomainError {
	return NewDomainError(KindValidation, code, fmt.Sprintf(format, args...))
}

// NewResourceError builds a KindResource error
func NewResourceError(code, format string, args ...interface{}) *DomainError {
	return NewDomainError(KindResource, code, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first DomainError in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// CodeOf returns the code of the first DomainError in err's chain, or "" if there is none
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsUserFacing reports whether err should be shown to the player as-is
func IsUserFacing(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindResource:
		return true
	default:
		return false
	}
}

// Shared error codes used across bounded contexts

const (
	CodeNotOwner          = "NOT_OWNER"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount     = "INVALID_AMOUNT"
)

// NewNotOwnerError reports that player does not own the named entity
func NewNotOwnerError(entity, id string, player PlayerID) *DomainError {
	return NewValidationError(CodeNotOwner, "%s %s is not owned by player %s", entity, id, player)
}

// NewInsufficientFundsError reports that a withdrawal was not covered by the player's balance
func NewInsufficientFundsError(player PlayerID, required Money) *DomainError {
	return NewResourceError(CodeInsufficientFunds, "player %s cannot cover %s", player, required.StringFixed(2))
}

// ErrNotOwner and ErrInsufficientFunds are sentinels for errors.Is checks
var (
	ErrNotOwner          = &DomainError{Kind: KindValidation, Code: CodeNotOwner, Message: "not owner"}
	ErrInsufficientFunds = &DomainError{Kind: KindResource, Code: CodeInsufficientFunds, Message: "insufficient funds"}
)
