package auth

import (
	"context"
	"fmt"
	"reflect"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// CodeRateLimited is returned when a player sends actions faster than allowed
const CodeRateLimited = "RATE_LIMITED"

// Context keys for passing the acting player through context
type authContextKey int

const (
	playerKey authContextKey = iota + 1000 // Offset from logger keys
)

// WithPlayer records the player on whose behalf a request runs
func WithPlayer(ctx context.Context, player shared.PlayerID) context.Context {
	return context.WithValue(ctx, playerKey, player)
}

// PlayerFromContext returns the acting player
func PlayerFromContext(ctx context.Context) (shared.PlayerID, error) {
	player, ok := ctx.Value(playerKey).(shared.PlayerID)
	if !ok || player.IsZero() {
		return shared.PlayerID{}, fmt.Errorf("player not found in context")
	}
	return player, nil
}

// PlayerMiddleware creates middleware that puts the request's PlayerID into the
// context and throttles player actions through limiter. Requests without a
// PlayerID field (admin and scheduler work) pass through untouched.
func PlayerMiddleware(limiter *common.ActionLimiter) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		player, found := extractPlayerID(request)
		if !found {
			return next(ctx, request)
		}

		if !limiter.Allow(player) {
			return nil, shared.NewValidationError(CodeRateLimited,
				"player %s is sending actions too quickly, try again shortly", player)
		}

		ctx = WithPlayer(ctx, player)
		common.LoggerFromContext(ctx).DebugContext(ctx, "dispatching player action",
			"player", player.String(), "request", fmt.Sprintf("%T", request))

		return next(ctx, request)
	}
}

var playerIDType = reflect.TypeOf(shared.PlayerID{})

// extractPlayerID uses reflection to read a PlayerID field from the request
func extractPlayerID(request mediator.Request) (shared.PlayerID, bool) {
	requestValue := reflect.ValueOf(request)
	if requestValue.Kind() == reflect.Ptr {
		if requestValue.IsNil() {
			return shared.PlayerID{}, false
		}
		requestValue = requestValue.Elem()
	}

	if requestValue.Kind() != reflect.Struct {
		return shared.PlayerID{}, false
	}

	field, found := requestValue.Type().FieldByName("PlayerID")
	if !found || field.Type != playerIDType {
		return shared.PlayerID{}, false
	}

	player := requestValue.FieldByName("PlayerID").Interface().(shared.PlayerID)
	if player.IsZero() {
		return shared.PlayerID{}, false
	}
	return player, true
}
