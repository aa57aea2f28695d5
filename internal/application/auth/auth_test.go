package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/application/auth"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

var alice = shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")

type playerAction struct {
	PlayerID shared.PlayerID
}

type adminAction struct{}

func newMediator(t *testing.T, limiter *common.ActionLimiter) (mediator.Mediator, *shared.PlayerID) {
	t.Helper()
	seen := &shared.PlayerID{}
	handler := mediator.HandlerFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		if player, err := auth.PlayerFromContext(ctx); err == nil {
			*seen = player
		}
		return nil, nil
	})

	m := mediator.NewMediator()
	m.RegisterMiddleware(auth.PlayerMiddleware(limiter))
	require.NoError(t, mediator.RegisterHandler[*playerAction](m, handler))
	require.NoError(t, mediator.RegisterHandler[*adminAction](m, handler))
	return m, seen
}

func TestPlayerMiddleware_PutsPlayerInContext(t *testing.T) {
	m, seen := newMediator(t, nil)

	_, err := m.Send(context.Background(), &playerAction{PlayerID: alice})

	require.NoError(t, err)
	assert.True(t, seen.Equals(alice))
}

func TestPlayerMiddleware_ThrottlesPerPlayer(t *testing.T) {
	m, _ := newMediator(t, common.NewActionLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		_, err := m.Send(context.Background(), &playerAction{PlayerID: alice})
		require.NoError(t, err)
	}
	_, err := m.Send(context.Background(), &playerAction{PlayerID: alice})

	require.Error(t, err)
	assert.Equal(t, auth.CodeRateLimited, shared.CodeOf(err))

	_, err = m.Send(context.Background(), &adminAction{})
	assert.NoError(t, err, "requests without a player are never throttled")
}

func TestActionLimiter_DisabledWithoutRate(t *testing.T) {
	limiter := common.NewActionLimiter(0, 1)

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow(alice))
	}
}

func TestPlayerFromContext_Missing(t *testing.T) {
	_, err := auth.PlayerFromContext(context.Background())
	assert.Error(t, err)
}
