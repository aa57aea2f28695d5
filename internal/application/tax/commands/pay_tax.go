package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// PayTaxCommand settles the tax balance of one factory
type PayTaxCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

// PayTaxResponse carries the receipt
type PayTaxResponse struct {
	Payment *domainTax.Payment
}

type PayTaxHandler struct {
	engine     *tax.Engine
	serializer common.Serializer
}

func NewPayTaxHandler(engine *tax.Engine, serializer common.Serializer) *PayTaxHandler {
	return &PayTaxHandler{engine: engine, serializer: serializer}
}

func (h *PayTaxHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PayTaxCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PayTaxCommand")
	}

	var payment *domainTax.Payment
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		payment, err = h.engine.PayTax(ctx, cmd.PlayerID, cmd.FactoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PayTaxResponse{Payment: payment}, nil
}

// PayAllTaxesCommand pays every outstanding record of the player, one by one
type PayAllTaxesCommand struct {
	PlayerID shared.PlayerID
}

type PayAllTaxesHandler struct {
	engine     *tax.Engine
	serializer common.Serializer
}

func NewPayAllTaxesHandler(engine *tax.Engine, serializer common.Serializer) *PayAllTaxesHandler {
	return &PayAllTaxesHandler{engine: engine, serializer: serializer}
}

// Handle returns a *tax.PayAllResult. Partial success is not an error; inspect Failures.
func (h *PayAllTaxesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PayAllTaxesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PayAllTaxesCommand")
	}

	var result *tax.PayAllResult
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = h.engine.PayAllTaxes(ctx, cmd.PlayerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
