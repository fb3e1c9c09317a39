package websocket

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mosc/eventadmin/internal/pkg/metrics"
)

// Message types pushed to campaign subscribers.
const (
	TypeSnapshot  = "snapshot"
	TypeProgress  = "progress"
	TypeStatus    = "status"
	TypeCompleted = "completed"
	TypeTimeout   = "timeout"
	TypeError     = "error"
)

type directMessage struct {
	client *Client
	data   []byte
}

// Message is one frame sent to campaign subscribers.
type Message struct {
	Type       string      `json:"type"`
	CampaignID string      `json:"campaignId"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients per campaign and broadcasts
// progress to them.
type Hub struct {
	// Registered clients organized by campaign ID
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client

	// closed when Serve returns so pumps never block on a stopped hub
	quit     chan struct{}
	quitOnce sync.Once

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 64),
		direct:     make(chan directMessage, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Serve runs the hub until ctx is cancelled. It satisfies suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.quitOnce.Do(func() { close(h.quit) })
			h.closeAll()
			return ctx.Err()

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case dm := <-h.direct:
			h.sendDirect(dm)
		}
	}
}

// String names the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.campaignID]; !ok {
		h.clients[client.campaignID] = make(map[*Client]bool)
	}
	h.clients[client.campaignID][client] = true
	metrics.WebSocketConnections.Inc()

	h.logger.Info().
		Str("campaignID", client.campaignID).
		Str("userID", client.userID).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.campaignID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	metrics.WebSocketConnections.Dec()
	if len(clients) == 0 {
		delete(h.clients, client.campaignID)
	}
	h.logger.Info().
		Str("campaignID", client.campaignID).
		Str("userID", client.userID).
		Msg("Client unregistered")
}

// broadcastMessage sends message to every client of its campaign. Clients
// whose buffer is full are dropped.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("campaignID", message.CampaignID).Msg("Failed to marshal message for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.CampaignID]
	if !ok {
		h.logger.Debug().Str("campaignID", message.CampaignID).Msg("No subscribers for campaign")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("campaignID", message.CampaignID).
		Str("type", message.Type).
		Int("clientCount", len(clients)).
		Msg("Message broadcasted to campaign")
}

// sendDirect delivers a frame to one client if it is still registered.
func (h *Hub) sendDirect(dm directMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[dm.client.campaignID][dm.client] {
		return
	}
	select {
	case dm.client.send <- dm.data:
	default:
		h.removeLocked(dm.client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Broadcast queues a message for the subscribers of campaignID. It never
// blocks; when the queue is full the frame is dropped.
func (h *Hub) Broadcast(campaignID, msgType string, data interface{}) {
	msg := &Message{Type: msgType, CampaignID: campaignID, Data: data, Timestamp: time.Now()}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn().Str("campaignID", campaignID).Msg("Broadcast queue full, dropping frame")
	}
}

// join registers client unless the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// leave unregisters client unless the hub has stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// reply queues a frame for a single client.
func (h *Hub) reply(client *Client, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal reply")
		return
	}
	select {
	case h.direct <- directMessage{client: client, data: data}:
	case <-h.quit:
	}
}

// ClientsCount returns the number of subscribers of a campaign.
func (h *Hub) ClientsCount(campaignID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[campaignID])
}
