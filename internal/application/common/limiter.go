package common

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ActionLimiter throttles player-initiated mutations with one token bucket per player
type ActionLimiter struct {
	mu       sync.Mutex
	limiters map[shared.PlayerID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewActionLimiter allows perSecond actions per player with the given burst.
// A non-positive perSecond disables throttling.
func NewActionLimiter(perSecond float64, burst int) *ActionLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &ActionLimiter{
		limiters: make(map[shared.PlayerID]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Allow reports whether player may act now, consuming a token if so
func (l *ActionLimiter) Allow(player shared.PlayerID) bool {
	if l == nil || l.limit == rate.Inf {
		return true
	}
	return l.limiterFor(player).Allow()
}

func (l *ActionLimiter) limiterFor(player shared.PlayerID) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[player]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[player] = limiter
	}
	return limiter
}
