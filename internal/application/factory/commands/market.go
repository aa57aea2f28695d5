package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	appFactory "github.com/andrescamacho/factory-economy/internal/application/factory"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	domainFactory "github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// BuyFactoryCommand purchases an unowned factory
type BuyFactoryCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

type BuyFactoryResponse struct {
	Factory *domainFactory.Factory
}

type BuyFactoryHandler struct {
	service    *appFactory.Service
	serializer common.Serializer
}

func NewBuyFactoryHandler(service *appFactory.Service, serializer common.Serializer) *BuyFactoryHandler {
	return &BuyFactoryHandler{service: service, serializer: serializer}
}

func (h *BuyFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*BuyFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *BuyFactoryCommand")
	}

	var f *domainFactory.Factory
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		f, err = h.service.Buy(ctx, cmd.PlayerID, cmd.FactoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BuyFactoryResponse{Factory: f}, nil
}

// SellFactoryCommand sells an owned factory back to the market
type SellFactoryCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

type SellFactoryHandler struct {
	service    *appFactory.Service
	serializer common.Serializer
}

func NewSellFactoryHandler(service *appFactory.Service, serializer common.Serializer) *SellFactoryHandler {
	return &SellFactoryHandler{service: service, serializer: serializer}
}

func (h *SellFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SellFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SellFactoryCommand")
	}

	var result *appFactory.SaleResult
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = h.service.Sell(ctx, cmd.PlayerID, cmd.FactoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetFastTravelCommand sets or clears (nil Anchor) the fast-travel anchor
type SetFastTravelCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
	Anchor    *domainFactory.Location
}

type SetFastTravelHandler struct {
	service    *appFactory.Service
	serializer common.Serializer
}

func NewSetFastTravelHandler(service *appFactory.Service, serializer common.Serializer) *SetFastTravelHandler {
	return &SetFastTravelHandler{service: service, serializer: serializer}
}

func (h *SetFastTravelHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SetFastTravelCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetFastTravelCommand")
	}

	var f *domainFactory.Factory
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		f, err = h.service.SetFastTravel(ctx, cmd.PlayerID, cmd.FactoryID, cmd.Anchor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}
