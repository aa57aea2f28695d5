package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// RecordingNotifier keeps every notification for assertions
type RecordingNotifier struct {
	mu     sync.Mutex
	events []ports.Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(ctx context.Context, player shared.PlayerID, kind ports.EventKind, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ports.Notification{Player: player, Kind: kind, Payload: payload})
}

// Count returns how many notifications of kind were sent
func (n *RecordingNotifier) Count(kind ports.EventKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

// Last returns the most recent notification of kind
func (n *RecordingNotifier) Last(kind ports.EventKind) (ports.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.events) - 1; i >= 0; i-- {
		if n.events[i].Kind == kind {
			return n.events[i], true
		}
	}
	return ports.Notification{}, false
}

// Reset forgets everything recorded so far
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}
