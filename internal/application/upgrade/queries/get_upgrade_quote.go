package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
)

// GetUpgradeQuoteQuery prices the next upgrade without starting it
type GetUpgradeQuoteQuery struct {
	FactoryID string
}

// GetUpgradeQuoteHandler handles the GetUpgradeQuote query
type GetUpgradeQuoteHandler struct {
	factories factory.FactoryRepository
	engine    *upgrade.Engine
}

func NewGetUpgradeQuoteHandler(factories factory.FactoryRepository, engine *upgrade.Engine) *GetUpgradeQuoteHandler {
	return &GetUpgradeQuoteHandler{factories: factories, engine: engine}
}

func (h *GetUpgradeQuoteHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetUpgradeQuoteQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetUpgradeQuoteQuery")
	}

	f, err := h.factories.Get(ctx, query.FactoryID)
	if err != nil {
		return nil, err
	}
	return h.engine.Quote(ctx, f)
}
