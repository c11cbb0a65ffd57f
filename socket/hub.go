package socket

import (
	"context"
	"encoding/json"
	"sync"

	"seeksy/pkg/logger"
)

const (
	ConnectedType       = "CONNECTED"        // Sent to a socket right after it registers
	TicketUpdateType    = "TICKET_UPDATE"    // Ticket status/assignee changed
	TicketCommentType   = "TICKET_COMMENT"   // New comment on a ticket
	TranscriptReadyType = "TRANSCRIPT_READY" // Transcription finished
	RenderStatusType    = "RENDER_STATUS"    // Clip render progressed
	CampaignSentType    = "CAMPAIGN_SENT"    // Email campaign finished sending
	ProposalSentType    = "PROPOSAL_SENT"    // Proposal email delivered

	sendBuffer      = 256
	broadcastBuffer = 1024
)

// Event is one realtime notification addressed to a user.
type Event struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans events out to every open socket of the addressed user. A user
// with several tabs or devices has one room holding all of them.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan Event, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Notify queues an event for userID. It never blocks a request: when the
// queue is full the event is dropped and logged.
func (h *Hub) Notify(userID, eventType string, payload any) {
	if userID == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s event: %v", eventType, err)
		return
	}
	select {
	case h.Broadcast <- Event{Type: eventType, UserID: userID, Payload: raw}:
	default:
		logger.Sugar.Warnf("Hub queue full, dropping %s event for user %s", eventType, userID)
	}
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[userID])
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			n := len(h.Rooms[client.UserID])
			h.mu.Unlock()

			welcome, _ := json.Marshal(map[string]any{"user_id": client.UserID, "connections": n})
			msg, _ := json.Marshal(Event{Type: ConnectedType, UserID: client.UserID, Payload: welcome})
			client.Send <- msg

		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case ev := <-h.Broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast event: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.Rooms[ev.UserID] {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	room, ok := h.Rooms[client.UserID]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.Rooms, client.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.Rooms {
		for client := range room {
			h.remove(client)
		}
	}
}
