package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
)

// RunAssessmentCommand runs an assessment pass outside the schedule (admin)
type RunAssessmentCommand struct{}

type RunAssessmentHandler struct {
	engine     *tax.Engine
	serializer common.Serializer
}

func NewRunAssessmentHandler(engine *tax.Engine, serializer common.Serializer) *RunAssessmentHandler {
	return &RunAssessmentHandler{engine: engine, serializer: serializer}
}

func (h *RunAssessmentHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*RunAssessmentCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunAssessmentCommand")
	}

	var report *tax.AssessReport
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		report, err = h.engine.Assess(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RunOverdueCheckCommand runs an overdue check outside the schedule (admin)
type RunOverdueCheckCommand struct{}

type RunOverdueCheckHandler struct {
	engine     *tax.Engine
	serializer common.Serializer
}

func NewRunOverdueCheckHandler(engine *tax.Engine, serializer common.Serializer) *RunOverdueCheckHandler {
	return &RunOverdueCheckHandler{engine: engine, serializer: serializer}
}

func (h *RunOverdueCheckHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*RunOverdueCheckCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunOverdueCheckCommand")
	}

	var report *tax.OverdueReport
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		report, err = h.engine.CheckOverdue(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
