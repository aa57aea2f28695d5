package helpers

import (
	"context"
	"errors"
	"sync"

	"github.com/andrescamacho/factory-economy/internal/application/setup"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ErrLedgerDown is returned by a FailingLedger once tripped
var ErrLedgerDown = errors.New("ledger unavailable")

// FailingLedger wraps a ledger and rejects withdrawals while tripped.
// Balance and HasFunds keep answering so callers get past their precondition checks.
type FailingLedger struct {
	ports.Ledger

	mu      sync.Mutex
	tripped bool
	calls   int
}

// NewFailingLedger wraps inner, starting untripped
func NewFailingLedger(inner ports.Ledger) *FailingLedger {
	return &FailingLedger{Ledger: inner}
}

// Trip makes every following Withdraw fail
func (l *FailingLedger) Trip() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tripped = true
}

// Withdraws counts the Withdraw calls rejected while tripped
func (l *FailingLedger) Withdraws() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *FailingLedger) Withdraw(ctx context.Context, player shared.PlayerID, amount shared.Money) error {
	l.mu.Lock()
	tripped := l.tripped
	if tripped {
		l.calls++
	}
	l.mu.Unlock()

	if tripped {
		return ErrLedgerDown
	}
	return l.Ledger.Withdraw(ctx, player, amount)
}

// WithFailingLedger routes ledger calls through ledger, which must wrap the harness host ledger
func WithFailingLedger(ledger *FailingLedger) HarnessOption {
	return func(deps *setup.Dependencies, settings *setup.Settings) {
		ledger.Ledger = deps.Ledger
		deps.Ledger = ledger
	}
}
