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

// Admin commands carry no PlayerID and are never rate limited.

// CreateFactoryCommand registers a new factory on the market
type CreateFactoryCommand struct {
	FactoryID string
	Zone      string
	Type      domainFactory.Type
	Price     shared.Money
}

type CreateFactoryHandler struct {
	service    *appFactory.Service
	serializer common.Serializer
}

func NewCreateFactoryHandler(service *appFactory.Service, serializer common.Serializer) *CreateFactoryHandler {
	return &CreateFactoryHandler{service: service, serializer: serializer}
}

func (h *CreateFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CreateFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateFactoryCommand")
	}

	var f *domainFactory.Factory
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		f, err = h.service.Create(ctx, cmd.FactoryID, cmd.Zone, cmd.Type, cmd.Price)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// RemoveFactoryCommand deletes a factory and its storage and tax record
type RemoveFactoryCommand struct {
	FactoryID string
}

type RemoveFactoryHandler struct {
	service    *appFactory.Service
	serializer common.Serializer
}

func NewRemoveFactoryHandler(service *appFactory.Service, serializer common.Serializer) *RemoveFactoryHandler {
	return &RemoveFactoryHandler{service: service, serializer: serializer}
}

func (h *RemoveFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RemoveFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RemoveFactoryCommand")
	}

	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		return h.service.Remove(ctx, cmd.FactoryID)
	})
	if err != nil {
		return nil, err
	}
	return cmd.FactoryID, nil
}

// SetFactoryLevelCommand overrides a factory level; the only way to lower one
type SetFactoryLevelCommand struct {
	FactoryID string
	Level     int
}

type SetFactoryLevelHandler struct {
	service    *appFactory.Service
	serializer common.Serializer
}

func NewSetFactoryLevelHandler(service *appFactory.Service, serializer common.Serializer) *SetFactoryLevelHandler {
	return &SetFactoryLevelHandler{service: service, serializer: serializer}
}

func (h *SetFactoryLevelHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SetFactoryLevelCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetFactoryLevelCommand")
	}

	var f *domainFactory.Factory
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		f, err = h.service.SetLevel(ctx, cmd.FactoryID, cmd.Level)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}
