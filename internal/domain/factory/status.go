package factory

import "fmt"

// Raw state and event names shared by the status enum and the transition machine.
// Kept untyped so they convert to both Status and the statekit identifiers.
const (
	stateStopped = "STOPPED"
	stateRunning = "RUNNING"
	stateNoParts = "NO_PARTS"

	eventStart    = "start"
	eventComplete = "complete"
	eventStall    = "stall"
	eventReset    = "reset"
)

// Status represents the production state of a factory
type Status string

const (
	// StatusStopped indicates the factory is idle and can start a recipe
	StatusStopped Status = stateStopped

	// StatusRunning indicates an active, incomplete production task exists
	StatusRunning Status = stateRunning

	// StatusNoParts indicates the last start attempt lacked inputs
	StatusNoParts Status = stateNoParts
)

// AllStatuses returns every valid status
func AllStatuses() []Status {
	return []Status{StatusStopped, StatusRunning, StatusNoParts}
}

// String returns the string representation of the Status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusStopped, StatusRunning, StatusNoParts:
		return true
	default:
		return false
	}
}

// Label returns a short human readable label for listings. An unknown status,
// kept from storage until the next tick heals it, is shown as stored.
func (s Status) Label() string {
	switch s {
	case StatusStopped:
		return "idle"
	case StatusRunning:
		return "producing"
	case StatusNoParts:
		return "missing inputs"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid factory status: %s", s)
	}
	return status, nil
}
