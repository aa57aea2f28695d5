package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Message is the JSON frame pushed to websocket clients
type Message struct {
	Kind      ports.EventKind `json:"kind"`
	Player    string          `json:"player"`
	Payload   map[string]any  `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type delivery struct {
	player shared.PlayerID
	data   []byte
}

// Hub keeps the connected websocket clients per owner and routes each
// notification to that owner's clients only.
type Hub struct {
	clients    map[shared.PlayerID]map[*Client]struct{}
	publish    chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *slog.Logger
	clock      shared.Clock
}

func NewHub(logger *slog.Logger, clock shared.Clock) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Hub{
		clients:    make(map[shared.PlayerID]map[*Client]struct{}),
		publish:    make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		clock:      clock,
	}
}

// Run owns client registration and delivery until ctx is cancelled. Call it once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.InfoContext(ctx, "notification hub stopped")
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.player] == nil {
				h.clients[client.player] = make(map[*Client]struct{})
			}
			h.clients[client.player][client] = struct{}{}
			h.mu.Unlock()
			h.logger.DebugContext(ctx, "notification client connected", "player_id", client.player.String())
		case client := <-h.unregister:
			h.remove(client)
			h.logger.DebugContext(ctx, "notification client disconnected", "player_id", client.player.String())
		case d := <-h.publish:
			h.mu.Lock()
			for client := range h.clients[d.player] {
				select {
				case client.send <- d.data:
				default:
					// Slow client; drop it rather than stall the hub
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Notify queues a message for the player's clients. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Notify(ctx context.Context, player shared.PlayerID, kind ports.EventKind, payload map[string]any) {
	data, err := json.Marshal(Message{
		Kind:      kind,
		Player:    player.String(),
		Payload:   payload,
		Timestamp: h.clock.Now(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode notification", "kind", string(kind), "error", err)
		return
	}

	select {
	case h.publish <- delivery{player: player, data: data}:
	default:
		h.logger.WarnContext(ctx, "notification queue full, dropping message", "kind", string(kind))
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount returns the number of connected clients for player
func (h *Hub) ClientCount(player shared.PlayerID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[player])
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.player]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.player)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.removeLocked(client)
		}
	}
}
