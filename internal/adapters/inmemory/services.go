package inmemory

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Ledger implements ports.Ledger over the host balances
type Ledger struct{ h *Host }

func (l *Ledger) HasFunds(ctx context.Context, player shared.PlayerID, amount shared.Money) (bool, error) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	return l.h.balances[player].GreaterThanOrEqual(amount), nil
}

func (l *Ledger) Withdraw(ctx context.Context, player shared.PlayerID, amount shared.Money) error {
	if amount.IsNegative() {
		return shared.NewValidationError(shared.CodeInvalidAmount, "cannot withdraw a negative amount")
	}
	l.h.mu.Lock()
	defer l.h.mu.Unlock()

	balance := l.h.balances[player]
	if balance.LessThan(amount) {
		return shared.NewInsufficientFundsError(player, amount)
	}
	l.h.balances[player] = balance.Sub(amount)
	return nil
}

func (l *Ledger) Deposit(ctx context.Context, player shared.PlayerID, amount shared.Money) error {
	if amount.IsNegative() {
		return shared.NewValidationError(shared.CodeInvalidAmount, "cannot deposit a negative amount")
	}
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	l.h.balances[player] = l.h.balances[player].Add(amount)
	return nil
}

func (l *Ledger) Balance(ctx context.Context, player shared.PlayerID) (shared.Money, error) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	return l.h.balances[player], nil
}

// SetBalance overwrites a balance (admin, fixtures)
func (l *Ledger) SetBalance(player shared.PlayerID, amount shared.Money) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	l.h.balances[player] = amount
}

// Labor implements ports.LaborService
type Labor struct{ h *Host }

func (l *Labor) HasLaborAssigned(ctx context.Context, factoryID string) (bool, error) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	return l.h.labor[factoryID].Workers > 0, nil
}

func (l *Labor) TimeReductionFor(ctx context.Context, factoryID string) (float64, error) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	a, ok := l.h.labor[factoryID]
	if !ok || a.Workers == 0 {
		return 0, nil
	}
	return a.TimeReduction, nil
}

func (l *Labor) WageFor(ctx context.Context, factoryID string) (shared.Money, error) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	a, ok := l.h.labor[factoryID]
	if !ok || a.Workers == 0 {
		return shared.Zero, nil
	}
	return a.Wage, nil
}

// Assign sets the workers at a factory; zero workers removes the assignment
func (l *Labor) Assign(factoryID string, assignment LaborAssignment) {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()
	if assignment.Workers <= 0 {
		delete(l.h.labor, factoryID)
		return
	}
	l.h.labor[factoryID] = assignment
}

// Research implements buff.ResearchService
type Research struct{ h *Host }

func (r *Research) CompletedLevel(ctx context.Context, player shared.PlayerID, key buff.Key) (int, error) {
	r.h.mu.Lock()
	defer r.h.mu.Unlock()
	return r.h.research[player][key], nil
}

// SetLevel records a completed research level
func (r *Research) SetLevel(player shared.PlayerID, key buff.Key, level int) {
	r.h.mu.Lock()
	defer r.h.mu.Unlock()
	if r.h.research[player] == nil {
		r.h.research[player] = make(map[buff.Key]int)
	}
	r.h.research[player][key] = level
}

// Storage implements ports.StorageService with separate input and output stores
type Storage struct{ h *Host }

func (s *Storage) CreditOutput(ctx context.Context, factoryID, resourceID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("credit quantity must be positive")
	}
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	if s.h.outputs[factoryID] == nil {
		s.h.outputs[factoryID] = make(map[string]int)
	}
	s.h.outputs[factoryID][resourceID] += qty
	return nil
}

func (s *Storage) HasInput(ctx context.Context, factoryID, resourceID string, qty int) (bool, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	return s.h.inputs[factoryID][resourceID] >= qty, nil
}

func (s *Storage) ConsumeInput(ctx context.Context, factoryID, resourceID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	have := s.h.inputs[factoryID][resourceID]
	if have < qty {
		return fmt.Errorf("factory %s holds %d %s, %d needed", factoryID, have, resourceID, qty)
	}
	s.h.inputs[factoryID][resourceID] = have - qty
	return nil
}

func (s *Storage) RestoreInput(ctx context.Context, factoryID, resourceID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	s.AddInput(factoryID, resourceID, qty)
	return nil
}

func (s *Storage) Clear(ctx context.Context, factoryID string) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	delete(s.h.inputs, factoryID)
	delete(s.h.outputs, factoryID)
	return nil
}

// AddInput stocks the input store (deliveries, fixtures)
func (s *Storage) AddInput(factoryID, resourceID string, qty int) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	if s.h.inputs[factoryID] == nil {
		s.h.inputs[factoryID] = make(map[string]int)
	}
	s.h.inputs[factoryID][resourceID] += qty
}

// Input returns the quantity of resourceID in the input store
func (s *Storage) Input(factoryID, resourceID string) int {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	return s.h.inputs[factoryID][resourceID]
}

// Output returns the quantity of resourceID in the output store
func (s *Storage) Output(factoryID, resourceID string) int {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	return s.h.outputs[factoryID][resourceID]
}

// Progress implements ports.ProgressTracker by counting outputs per recipe
type Progress struct{ h *Host }

func (p *Progress) RecordProduction(ctx context.Context, player shared.PlayerID, recipeID string, outputs int) error {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()
	if p.h.progress[player] == nil {
		p.h.progress[player] = make(map[string]int)
	}
	p.h.progress[player][recipeID] += outputs
	return nil
}

// Count returns how many outputs player produced with recipeID
func (p *Progress) Count(player shared.PlayerID, recipeID string) int {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()
	return p.h.progress[player][recipeID]
}
