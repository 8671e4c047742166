package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and the connected-client
// registry: a mapping from user identity to the client that most recently
// announced it. The registry is ephemeral and per-process; it is rebuilt
// from scratch whenever the server restarts.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages for global broadcast.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// User identity -> client handle. The mutex guards the map and also
	// orders Send-channel closes (drop) against NotifyUser sends.
	mu         sync.RWMutex
	identities map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		identities: make(map[string]*Client),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					delete(h.clients, client)
					h.drop(client)
				}
			}
		}
	}
}

// Associate binds a user identity to a client after the client announces
// itself. A second announcement for the same identity overwrites the
// previous handle without closing it; the stale connection simply stops
// receiving notifications.
func (h *Hub) Associate(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.UserID = userID
	h.identities[userID] = client
	log.Info().Str("user_id", userID).Msg("User registered on push channel")
}

// drop closes a departing client's send channel and removes its identity
// entry if it still points at that client (a newer connection may have
// replaced it). The close happens under the write lock so it cannot
// interleave with a NotifyUser send, which holds the read lock.
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(client.Send)
	if client.UserID == "" {
		return
	}
	if current, ok := h.identities[client.UserID]; ok && current == client {
		delete(h.identities, client.UserID)
	}
}

// NotifyUser delivers a message to the client currently registered for the
// given identity. Delivery is best-effort: it reports false when no client
// is registered or its send buffer is full, and callers must not treat the
// result as an acknowledgement. The read lock is held across the send so a
// disconnecting client cannot have its channel closed mid-delivery.
func (h *Hub) NotifyUser(userID string, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.identities[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		return false
	}
}
