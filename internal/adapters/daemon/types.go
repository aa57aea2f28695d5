package daemon

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Client is the set of player actions the CLI sends to the engine. The daemon
// serves it over HTTP; DaemonClientLocal runs it in-process.
type Client interface {
	BuyFactory(ctx context.Context, player shared.PlayerID, factoryID string) (*FactoryResponse, error)
	SellFactory(ctx context.Context, player shared.PlayerID, factoryID string) (*SaleResponse, error)
	StartProduction(ctx context.Context, player shared.PlayerID, factoryID, recipeID string) (*ProductionResponse, error)
	StartUpgrade(ctx context.Context, player shared.PlayerID, factoryID string) (*UpgradeResponse, error)
	PayTax(ctx context.Context, player shared.PlayerID, factoryID string) (*TaxPaymentResponse, error)
	PayAllTaxes(ctx context.Context, player shared.PlayerID) (*PayAllResponse, error)
	PayInvoice(ctx context.Context, player shared.PlayerID, invoiceID uuid.UUID) (*InvoicePaymentResponse, error)
}

// Action names, used as the last path segment of /v1/actions/<name>
const (
	ActionBuyFactory      = "buy-factory"
	ActionSellFactory     = "sell-factory"
	ActionStartProduction = "start-production"
	ActionStartUpgrade    = "start-upgrade"
	ActionPayTax          = "pay-tax"
	ActionPayAllTaxes     = "pay-all-taxes"
	ActionPayInvoice      = "pay-invoice"
)

// ActionRequest is the body of every action call. Fields an action does not use are ignored.
type ActionRequest struct {
	PlayerID  string `json:"player_id"`
	FactoryID string `json:"factory_id,omitempty"`
	RecipeID  string `json:"recipe_id,omitempty"`
	InvoiceID string `json:"invoice_id,omitempty"`
}

// Response types (mirror the application results)

type FactoryResponse struct {
	FactoryID string       `json:"factory_id"`
	Price     shared.Money `json:"price"`
	Level     int          `json:"level"`
	Status    string       `json:"status"`
}

type SaleResponse struct {
	FactoryID string       `json:"factory_id"`
	Refund    shared.Money `json:"refund"`
}

type ProductionResponse struct {
	FactoryID   string        `json:"factory_id"`
	RecipeID    string        `json:"recipe_id"`
	Duration    time.Duration `json:"duration"`
	CompletesAt time.Time     `json:"completes_at"`
}

type UpgradeResponse struct {
	FactoryID   string        `json:"factory_id"`
	TargetLevel int           `json:"target_level"`
	Duration    time.Duration `json:"duration"`
	CompletesAt time.Time     `json:"completes_at"`
}

type TaxPaymentResponse struct {
	ReceiptID string       `json:"receipt_id"`
	FactoryID string       `json:"factory_id"`
	Amount    shared.Money `json:"amount"`
}

type PayFailureResponse struct {
	FactoryID string `json:"factory_id"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
}

type PayAllResponse struct {
	Paid      []TaxPaymentResponse `json:"paid"`
	Failures  []PayFailureResponse `json:"failures"`
	TotalPaid shared.Money         `json:"total_paid"`
}

type InvoicePaymentResponse struct {
	InvoiceID string       `json:"invoice_id"`
	Type      string       `json:"type"`
	Amount    shared.Money `json:"amount"`
}

// ErrorResponse carries a failed action back to the client
type ErrorResponse struct {
	Kind    shared.ErrorKind `json:"kind,omitempty"`
	Code    string           `json:"code,omitempty"`
	Message string           `json:"message"`
}
