package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	domainFactory "github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ProductionDTO is the read view of a running task
type ProductionDTO struct {
	RecipeID    string
	StartedAt   time.Time
	Duration    time.Duration
	Progress    float64
	Remaining   time.Duration
	CompletesAt time.Time
}

// UpgradeDTO is the read view of an upgrade in flight
type UpgradeDTO struct {
	TargetLevel int
	StartedAt   time.Time
	Duration    time.Duration
	Remaining   time.Duration
}

// FactoryDTO is a point-in-time snapshot of a factory
type FactoryDTO struct {
	ID         string
	Zone       string
	Type       domainFactory.Type
	Owner      string
	Price      shared.Money
	Level      int
	Status     domainFactory.Status
	Anchor     *domainFactory.Location
	Production *ProductionDTO
	Upgrade    *UpgradeDTO
	UpdatedAt  time.Time
}

// NewFactoryDTO snapshots f as of now
func NewFactoryDTO(f *domainFactory.Factory, now time.Time) *FactoryDTO {
	dto := &FactoryDTO{
		ID:        f.ID(),
		Zone:      f.Zone(),
		Type:      f.Type(),
		Price:     f.Price(),
		Level:     f.Level(),
		Status:    f.Status(),
		Anchor:    f.Anchor(),
		UpdatedAt: f.UpdatedAt(),
	}
	if owner := f.Owner(); owner != nil {
		dto.Owner = owner.String()
	}
	if task := f.Production(); task != nil {
		dto.Production = &ProductionDTO{
			RecipeID:    task.RecipeID(),
			StartedAt:   task.StartedAt(),
			Duration:    task.Duration(),
			Progress:    task.Progress(now),
			Remaining:   task.Remaining(now),
			CompletesAt: task.CompletesAt(),
		}
	}
	if up := f.Upgrade(); up != nil {
		dto.Upgrade = &UpgradeDTO{
			TargetLevel: up.TargetLevel(),
			StartedAt:   up.StartedAt(),
			Duration:    up.Duration(),
			Remaining:   up.Remaining(now),
		}
	}
	return dto
}

// GetFactoryQuery fetches one factory
type GetFactoryQuery struct {
	FactoryID string
}

type GetFactoryHandler struct {
	factories domainFactory.FactoryRepository
	clock     shared.Clock
}

func NewGetFactoryHandler(factories domainFactory.FactoryRepository, clock shared.Clock) *GetFactoryHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetFactoryHandler{factories: factories, clock: clock}
}

func (h *GetFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetFactoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetFactoryQuery")
	}

	f, err := h.factories.Get(ctx, query.FactoryID)
	if err != nil {
		return nil, err
	}
	return NewFactoryDTO(f, h.clock.Now()), nil
}

// ListFactoriesQuery lists all factories, or only those of Owner when set
type ListFactoriesQuery struct {
	Owner *shared.PlayerID
}

type ListFactoriesHandler struct {
	factories domainFactory.FactoryRepository
	clock     shared.Clock
}

func NewListFactoriesHandler(factories domainFactory.FactoryRepository, clock shared.Clock) *ListFactoriesHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ListFactoriesHandler{factories: factories, clock: clock}
}

func (h *ListFactoriesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListFactoriesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListFactoriesQuery")
	}

	var (
		factories []*domainFactory.Factory
		err       error
	)
	if query.Owner != nil {
		factories, err = h.factories.ListByOwner(ctx, *query.Owner)
	} else {
		factories, err = h.factories.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list factories: %w", err)
	}

	now := h.clock.Now()
	dtos := make([]*FactoryDTO, 0, len(factories))
	for _, f := range factories {
		dtos = append(dtos, NewFactoryDTO(f, now))
	}
	return dtos, nil
}
