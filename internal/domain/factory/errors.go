package factory

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Error codes for factory operations
const (
	CodeFactoryNotFound        = "FACTORY_NOT_FOUND"
	CodeFactoryExists          = "FACTORY_EXISTS"
	CodeAlreadyOwned           = "ALREADY_OWNED"
	CodeNotForSale             = "NOT_OWNED"
	CodeFactoryLimitReached    = "FACTORY_LIMIT_REACHED"
	CodeTaxesOutstanding       = "TAXES_OUTSTANDING"
	CodeRecipeNotFound         = "RECIPE_NOT_FOUND"
	CodeRecipeNotAllowed       = "RECIPE_NOT_ALLOWED"
	CodeNoEmployeeAssigned     = "NO_EMPLOYEE_ASSIGNED"
	CodeInsufficientInputs     = "INSUFFICIENT_INPUTS"
	CodeAlreadyProducing       = "ALREADY_PRODUCING"
	CodeNotProducing           = "NOT_PRODUCING"
	CodeAlreadyUpgrading       = "ALREADY_UPGRADING"
	CodeMaxLevelReached        = "MAX_LEVEL_REACHED"
	CodeUpgradeNotConfigured   = "UPGRADE_NOT_CONFIGURED"
	CodeInsufficientResources  = "INSUFFICIENT_RESOURCES"
	CodeInvalidLevel           = "INVALID_LEVEL"
	CodeInvalidStateTransition = "INVALID_STATUS_TRANSITION"
)

// Sentinels for errors.Is; they match any error carrying the same code
var (
	ErrFactoryNotFound       = shared.NewDomainError(shared.KindValidation, CodeFactoryNotFound, "factory not found")
	ErrFactoryExists         = shared.NewDomainError(shared.KindValidation, CodeFactoryExists, "factory already exists")
	ErrAlreadyOwned          = shared.NewDomainError(shared.KindValidation, CodeAlreadyOwned, "factory already owned")
	ErrNotOwned              = shared.NewDomainError(shared.KindValidation, CodeNotForSale, "factory has no owner")
	ErrFactoryLimitReached   = shared.NewDomainError(shared.KindValidation, CodeFactoryLimitReached, "factory limit reached")
	ErrTaxesOutstanding      = shared.NewDomainError(shared.KindValidation, CodeTaxesOutstanding, "taxes outstanding")
	ErrRecipeNotFound        = shared.NewDomainError(shared.KindValidation, CodeRecipeNotFound, "recipe not found")
	ErrRecipeNotAllowed      = shared.NewDomainError(shared.KindValidation, CodeRecipeNotAllowed, "recipe not allowed")
	ErrNoEmployeeAssigned    = shared.NewDomainError(shared.KindValidation, CodeNoEmployeeAssigned, "no employee assigned")
	ErrInsufficientInputs    = shared.NewDomainError(shared.KindResource, CodeInsufficientInputs, "insufficient inputs")
	ErrAlreadyProducing      = shared.NewDomainError(shared.KindValidation, CodeAlreadyProducing, "already producing")
	ErrNotProducing          = shared.NewDomainError(shared.KindValidation, CodeNotProducing, "not producing")
	ErrAlreadyUpgrading      = shared.NewDomainError(shared.KindValidation, CodeAlreadyUpgrading, "already upgrading")
	ErrMaxLevelReached       = shared.NewDomainError(shared.KindValidation, CodeMaxLevelReached, "max level reached")
	ErrUpgradeNotConfigured  = shared.NewDomainError(shared.KindValidation, CodeUpgradeNotConfigured, "upgrade not configured")
	ErrInsufficientResources = shared.NewDomainError(shared.KindResource, CodeInsufficientResources, "insufficient resources")
	ErrInvalidLevel          = shared.NewDomainError(shared.KindValidation, CodeInvalidLevel, "invalid level")
)

func NewFactoryNotFoundError(id string) error {
	return shared.NewValidationError(CodeFactoryNotFound, "factory %s not found", id)
}

func NewFactoryExistsError(id string) error {
	return shared.NewValidationError(CodeFactoryExists, "factory %s already exists", id)
}

func NewAlreadyOwnedError(id string) error {
	return shared.NewValidationError(CodeAlreadyOwned, "factory %s already has an owner", id)
}

func NewNotOwnedError(id string) error {
	return shared.NewValidationError(CodeNotForSale, "factory %s has no owner", id)
}

func NewFactoryLimitReachedError(player shared.PlayerID, limit int) error {
	return shared.NewValidationError(CodeFactoryLimitReached, "player %s already owns the maximum of %d factories", player, limit)
}

func NewTaxesOutstandingError(id string, due shared.Money) error {
	return shared.NewValidationError(CodeTaxesOutstanding, "factory %s has %s in unpaid taxes", id, due.StringFixed(2))
}

func NewRecipeNotFoundError(id string) error {
	return shared.NewValidationError(CodeRecipeNotFound, "recipe %s not found", id)
}

func NewRecipeNotAllowedError(recipeID string, t Type) error {
	return shared.NewValidationError(CodeRecipeNotAllowed, "recipe %s cannot run in a %s factory", recipeID, t)
}

func NewNoEmployeeAssignedError(id string) error {
	return shared.NewValidationError(CodeNoEmployeeAssigned, "factory %s has no employee assigned", id)
}

func NewAlreadyProducingError(id string) error {
	return shared.NewValidationError(CodeAlreadyProducing, "factory %s is already producing", id)
}

func NewNotProducingError(id string) error {
	return shared.NewValidationError(CodeNotProducing, "factory %s has no production to complete", id)
}

func NewAlreadyUpgradingError(id string) error {
	return shared.NewValidationError(CodeAlreadyUpgrading, "factory %s is already upgrading", id)
}

func NewMaxLevelReachedError(id string, maxLevel int) error {
	return shared.NewValidationError(CodeMaxLevelReached, "factory %s is already at max level %d", id, maxLevel)
}

func NewUpgradeNotConfiguredError(targetLevel int) error {
	return shared.NewValidationError(CodeUpgradeNotConfigured, "no upgrade configured for level %d", targetLevel)
}

func NewInvalidLevelError(level, maxLevel int) error {
	return shared.NewValidationError(CodeInvalidLevel, "level %d outside 1..%d", level, maxLevel)
}

// InsufficientInputsError lists the recipe inputs that storage could not cover
type InsufficientInputsError struct {
	*shared.DomainError
	FactoryID string
	Missing   []ResourceAmount
}

func NewInsufficientInputsError(factoryID string, missing []ResourceAmount) *InsufficientInputsError {
	return &InsufficientInputsError{
		DomainError: shared.NewResourceError(CodeInsufficientInputs,
			"factory %s is missing inputs: %s", factoryID, formatAmounts(missing)),
		FactoryID: factoryID,
		Missing:   missing,
	}
}

func (e *InsufficientInputsError) Unwrap() error { return e.DomainError }

// InsufficientResourcesError lists the upgrade materials that storage could not cover
type InsufficientResourcesError struct {
	*shared.DomainError
	FactoryID string
	Missing   []ResourceAmount
}

func NewInsufficientResourcesError(factoryID string, missing []ResourceAmount) *InsufficientResourcesError {
	return &InsufficientResourcesError{
		DomainError: shared.NewResourceError(CodeInsufficientResources,
			"factory %s is missing upgrade materials: %s", factoryID, formatAmounts(missing)),
		FactoryID: factoryID,
		Missing:   missing,
	}
}

func (e *InsufficientResourcesError) Unwrap() error { return e.DomainError }

// ErrInvalidTransition indicates a status event with no transition from the current status
type ErrInvalidTransition struct {
	From  Status
	Event string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot %s factory in %s state", e.Event, e.From)
}

func formatAmounts(amounts []ResourceAmount) string {
	parts := make([]string, 0, len(amounts))
	for _, a := range amounts {
		parts = append(parts, fmt.Sprintf("%dx %s", a.Quantity, a.ResourceID))
	}
	return strings.Join(parts, ", ")
}
