package mediator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
)

type echoRequest struct{ Value string }

type otherRequest struct{}

func echoHandler() mediator.HandlerFunc {
	return func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return request.(*echoRequest).Value, nil
	}
}

func TestMediator_DispatchesByRequestType(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*echoRequest](m, echoHandler()))

	got, err := mediator.Dispatch[string](context.Background(), m, &echoRequest{Value: "ok"})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestMediator_Errors(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*echoRequest](m, echoHandler()))

	assert.Error(t, mediator.RegisterHandler[*echoRequest](m, echoHandler()), "duplicate registration")

	_, err := m.Send(context.Background(), &otherRequest{})
	assert.Error(t, err, "unregistered type")

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err, "nil request")

	_, err = mediator.Dispatch[int](context.Background(), m, &echoRequest{Value: "x"})
	assert.Error(t, err, "wrong response type")
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*echoRequest](m, echoHandler()))

	var order []string
	trace := func(name string) mediator.Middleware {
		return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			order = append(order, name+">")
			resp, err := next(ctx, request)
			order = append(order, "<"+name)
			return resp, err
		}
	}
	m.RegisterMiddleware(trace("outer"))
	m.RegisterMiddleware(trace("inner"))

	_, err := m.Send(context.Background(), &echoRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, order)
}
