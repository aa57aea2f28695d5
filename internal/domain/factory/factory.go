package factory

import (
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Factory is a production facility that turns stored inputs into outputs over time.
//
// Invariants:
//   - status is RUNNING only while an incomplete production task exists (restored by Heal)
//   - at most one upgrade is in flight, and never at max level
//   - level only grows through upgrades; AdminSetLevel is the one way to lower it
//   - an unowned factory has no production and no upgrade
type Factory struct {
	id    string
	zone  string
	typ   Type
	owner *shared.PlayerID
	price shared.Money
	level int

	status     Status
	anchor     *Location
	production *ProductionTask
	upgrade    *UpgradeState

	createdAt time.Time
	updatedAt time.Time
}

// NewFactory creates an unowned, stopped level-1 factory
func NewFactory(id, zone string, typ Type, price shared.Money, now time.Time) (*Factory, error) {
	if id == "" {
		return nil, fmt.Errorf("factory id is required")
	}
	if !typ.IsValid() {
		return nil, fmt.Errorf("invalid factory type: %s", typ)
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError(shared.CodeInvalidAmount, "factory price cannot be negative")
	}

	return &Factory{
		id:        id,
		zone:      zone,
		typ:       typ,
		price:     price,
		level:     1,
		status:    StatusStopped,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructFactory rebuilds a factory from persistence. Timers keep their stored
// start timestamps so in-flight work resumes where it left off.
func ReconstructFactory(
	id, zone string,
	typ Type,
	owner *shared.PlayerID,
	price shared.Money,
	level int,
	status Status,
	anchor *Location,
	production *ProductionTask,
	upgrade *UpgradeState,
	createdAt, updatedAt time.Time,
) *Factory {
	return &Factory{
		id:         id,
		zone:       zone,
		typ:        typ,
		owner:      owner,
		price:      price,
		level:      level,
		status:     status,
		anchor:     anchor,
		production: production,
		upgrade:    upgrade,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Getters

func (f *Factory) ID() string                  { return f.id }
func (f *Factory) Zone() string                { return f.zone }
func (f *Factory) Type() Type                  { return f.typ }
func (f *Factory) Owner() *shared.PlayerID     { return f.owner }
func (f *Factory) Price() shared.Money         { return f.price }
func (f *Factory) Level() int                  { return f.level }
func (f *Factory) Status() Status              { return f.status }
func (f *Factory) Anchor() *Location           { return f.anchor }
func (f *Factory) Production() *ProductionTask { return f.production }
func (f *Factory) Upgrade() *UpgradeState      { return f.upgrade }
func (f *Factory) CreatedAt() time.Time        { return f.createdAt }
func (f *Factory) UpdatedAt() time.Time        { return f.updatedAt }

// IsOwned reports whether a player owns the factory
func (f *Factory) IsOwned() bool {
	return f.owner != nil
}

// IsOwnedBy reports whether player owns the factory
func (f *Factory) IsOwnedBy(player shared.PlayerID) bool {
	return shared.PlayerIDPtrEquals(f.owner, player)
}

// IsRunning reports whether a production task is in flight
func (f *Factory) IsRunning() bool {
	return f.status == StatusRunning
}

// IsUpgrading reports whether an upgrade is in flight
func (f *Factory) IsUpgrading() bool {
	return f.upgrade != nil
}

// EnsureOwnedBy returns a NotOwner error unless player owns the factory
func (f *Factory) EnsureOwnedBy(player shared.PlayerID) error {
	if !f.IsOwnedBy(player) {
		return shared.NewNotOwnerError("factory", f.id, player)
	}
	return nil
}

// ===== Ownership =====

// AssignOwner records a purchase
func (f *Factory) AssignOwner(player shared.PlayerID, now time.Time) error {
	if f.owner != nil {
		return NewAlreadyOwnedError(f.id)
	}
	owner := player
	f.owner = &owner
	f.touch(now)
	return nil
}

// ReleaseOwnership clears the owner together with any running production and
// upgrade. Timers are not resumable by the next owner.
func (f *Factory) ReleaseOwnership(now time.Time) error {
	if f.owner == nil {
		return NewNotOwnedError(f.id)
	}
	f.owner = nil
	f.production = nil
	f.upgrade = nil
	f.anchor = nil
	f.status = StatusStopped
	f.touch(now)
	return nil
}

// SetAnchor sets or clears (nil) the fast-travel location
func (f *Factory) SetAnchor(anchor *Location, now time.Time) {
	if anchor != nil {
		copied := *anchor
		anchor = &copied
	}
	f.anchor = anchor
	f.touch(now)
}

// ===== Production =====

// StartProduction replaces any finished task with task and moves to RUNNING
func (f *Factory) StartProduction(task *ProductionTask, now time.Time) error {
	if task == nil {
		return fmt.Errorf("production task is required")
	}
	if f.status == StatusRunning {
		return NewAlreadyProducingError(f.id)
	}

	next, err := transition(f.id, f.status, eventStart)
	if err != nil {
		return err
	}

	f.production = task
	f.status = next
	f.touch(now)
	return nil
}

// MarkNoParts records a start attempt that failed for lack of inputs
func (f *Factory) MarkNoParts(now time.Time) error {
	if f.status == StatusNoParts {
		return nil
	}
	if f.status == StatusRunning {
		return NewAlreadyProducingError(f.id)
	}

	next, err := transition(f.id, f.status, eventStall)
	if err != nil {
		return err
	}
	f.status = next
	f.touch(now)
	return nil
}

// CompleteProduction detaches the finished task and stops the factory in one step,
// so a second call for the same task fails instead of crediting outputs again.
func (f *Factory) CompleteProduction(now time.Time) (*ProductionTask, error) {
	if f.status != StatusRunning || f.production == nil {
		return nil, NewNotProducingError(f.id)
	}
	if !f.production.Complete(now) {
		return nil, fmt.Errorf("production on factory %s completes in %s",
			f.id, f.production.Remaining(now).Round(time.Second))
	}

	next, err := transition(f.id, f.status, eventComplete)
	if err != nil {
		return nil, err
	}

	task := f.production
	f.production = nil
	f.status = next
	f.touch(now)
	return task, nil
}

// Heal repairs a status that contradicts the task: RUNNING without a task goes
// back to STOPPED, and a task left on a non-running factory is dropped.
// It returns true when something was changed.
func (f *Factory) Heal(now time.Time) bool {
	switch {
	case !f.status.IsValid():
		f.status = StatusStopped
		f.production = nil
		f.touch(now)
		return true
	case f.status == StatusRunning && f.production == nil:
		next, err := transition(f.id, f.status, eventReset)
		if err != nil {
			next = StatusStopped
		}
		f.status = next
		f.touch(now)
		return true
	case f.status != StatusRunning && f.production != nil:
		f.production = nil
		f.touch(now)
		return true
	}
	return false
}

// ===== Upgrade =====

// CanUpgrade checks the upgrade preconditions that depend only on the factory
func (f *Factory) CanUpgrade(maxLevel int) error {
	if f.upgrade != nil {
		return NewAlreadyUpgradingError(f.id)
	}
	if f.level >= maxLevel {
		return NewMaxLevelReachedError(f.id, maxLevel)
	}
	return nil
}

// StartUpgrade begins a timed level-up
func (f *Factory) StartUpgrade(state *UpgradeState, maxLevel int, now time.Time) error {
	if state == nil {
		return fmt.Errorf("upgrade state is required")
	}
	if err := f.CanUpgrade(maxLevel); err != nil {
		return err
	}
	if state.TargetLevel() != f.level+1 {
		return fmt.Errorf("upgrade target %d does not follow level %d", state.TargetLevel(), f.level)
	}

	f.upgrade = state
	f.touch(now)
	return nil
}

// CompleteUpgrade applies a finished upgrade. It returns false when there is
// nothing to apply yet.
func (f *Factory) CompleteUpgrade(now time.Time) bool {
	if f.upgrade == nil || !f.upgrade.Complete(now) {
		return false
	}
	if f.upgrade.TargetLevel() > f.level {
		f.level = f.upgrade.TargetLevel()
	}
	f.upgrade = nil
	f.touch(now)
	return true
}

// AdminSetLevel overrides the level and cancels any upgrade in flight
func (f *Factory) AdminSetLevel(level, maxLevel int, now time.Time) error {
	if level < 1 || level > maxLevel {
		return NewInvalidLevelError(level, maxLevel)
	}
	f.level = level
	f.upgrade = nil
	f.touch(now)
	return nil
}

func (f *Factory) touch(now time.Time) {
	f.updatedAt = now
}

func (f *Factory) String() string {
	owner := "unowned"
	if f.owner != nil {
		owner = f.owner.String()
	}
	return fmt.Sprintf("Factory[%s, type=%s, level=%d, status=%s, owner=%s]",
		f.id, f.typ, f.level, f.status, owner)
}
