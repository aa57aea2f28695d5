package factory

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// statusContext carries the factory being transitioned so rejections can name it
type statusContext struct {
	FactoryID string
}

// statusMachine wraps a statekit interpreter positioned at a factory's current status.
//
//	STOPPED  --start-->    RUNNING
//	STOPPED  --stall-->    NO_PARTS
//	NO_PARTS --start-->    RUNNING
//	NO_PARTS --reset-->    STOPPED
//	RUNNING  --complete--> STOPPED
//	RUNNING  --reset-->    STOPPED
type statusMachine struct {
	interpreter *statekit.Interpreter[statusContext]
}

func newStatusMachine(factoryID string, current Status) (*statusMachine, error) {
	builder := statekit.NewMachine[statusContext]("factory-status").
		WithInitial(statekit.StateID(string(current))).
		WithContext(statusContext{FactoryID: factoryID})

	builder.State(stateStopped).
		On(eventStart).Target(stateRunning).
		On(eventStall).Target(stateNoParts).
		Done()

	builder.State(stateNoParts).
		On(eventStart).Target(stateRunning).
		On(eventReset).Target(stateStopped).
		Done()

	builder.State(stateRunning).
		On(eventComplete).Target(stateStopped).
		On(eventReset).Target(stateStopped).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build factory status machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &statusMachine{interpreter: interpreter}, nil
}

func (sm *statusMachine) current() Status {
	return Status(sm.interpreter.State().Value)
}

// fire sends event and reports the resulting status. An event with no transition
// from the current state leaves it unchanged and is reported as ErrInvalidTransition.
func (sm *statusMachine) fire(event string) (Status, error) {
	before := sm.current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.current()

	if before == after {
		return before, &ErrInvalidTransition{From: before, Event: event}
	}
	return after, nil
}

// transition computes the status reached from current on event
func transition(factoryID string, current Status, event string) (Status, error) {
	sm, err := newStatusMachine(factoryID, current)
	if err != nil {
		return current, err
	}
	return sm.fire(event)
}
