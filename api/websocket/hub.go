package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"

	"github.com/openalpha/fundmarket/api/middleware"
	"github.com/openalpha/fundmarket/metrics"
	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// PoolChannelPrefix prefixes the per-pool event channel, e.g. "pool:<id>"
const PoolChannelPrefix = "pool:"

var _ types.Listener = (*Hub)(nil)

// Hub maintains the set of active clients and fans out pool events
type Hub struct {
	// Registered clients and channel membership
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Configuration
	config  *HubConfig
	metrics *metrics.Collector
}

// HubConfig contains hub configuration
type HubConfig struct {
	// Connection limits
	MaxSubscriptions int

	// Rate limiting
	MessageRateLimit int // Messages per second per client
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		MaxSubscriptions: 50,
		MessageRateLimit: 20,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
}

// NewHub creates a new Hub. collector may be nil.
func NewHub(config *HubConfig, collector *metrics.Collector) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:     make(map[*Client]bool),
		channels:    make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *SubscriptionRequest, 256),
		unsubscribe: make(chan *SubscriptionRequest, 256),
		config:      config,
		metrics:     collector,
	}
}

// Run processes membership changes until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)
		}
	}
}

// registerClient adds a new client
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if h.metrics != nil {
		h.metrics.RecordWSConnection(1)
	}
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	for channel, clients := range h.channels {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	close(client.send)
	if h.metrics != nil {
		h.metrics.RecordWSConnection(-1)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.removeLocked(client)
	}
}

// handleSubscription handles a subscription request
func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[req.Client]; !ok {
		return
	}
	if _, ok := h.channels[req.Channel]; !ok {
		h.channels[req.Channel] = make(map[*Client]bool)
	}
	h.channels[req.Channel][req.Client] = true

	req.Client.Send(encode(&WSMessage{Type: "subscribed", Channel: req.Channel}))
}

// handleUnsubscription handles an unsubscription request
func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.channels[req.Channel]; ok {
		delete(clients, req.Client)
		if len(clients) == 0 {
			delete(h.channels, req.Channel)
		}
	}
	if _, ok := h.clients[req.Client]; ok {
		req.Client.Send(encode(&WSMessage{Type: "unsubscribed", Channel: req.Channel}))
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.channels[channel]
	if !ok {
		return
	}
	for client := range clients {
		client.Send(data)
	}
	if h.metrics != nil {
		h.metrics.RecordWSMessage(channel)
	}
}

// ============ Keeper Listener ============

// OnNotification forwards a committed keeper notification to the pool channel
func (h *Hub) OnNotification(_ sdk.Context, n types.Notification) {
	poolID := poolIDOf(n)
	if poolID == "" {
		return
	}
	channel := PoolChannelPrefix + poolID
	h.BroadcastToChannel(channel, &WSMessage{
		Type:    n.EventType(),
		Channel: channel,
		Data:    n,
	})
}

func poolIDOf(n types.Notification) string {
	switch e := n.(type) {
	case types.PoolCreated:
		return e.PoolID
	case types.SubscribeNavSet:
		return e.PoolID
	case types.Subscribed:
		return e.PoolID
	case types.RedeemRequested:
		return e.PoolID
	case types.RedeemRevoked:
		return e.PoolID
	case types.RedeemSlotClosed:
		return e.PoolID
	case types.CarrySettled:
		return e.PoolID
	case types.RedeemNavSet:
		return e.PoolID
	case types.Repaid:
		return e.PoolID
	case types.Claimed:
		return e.PoolID
	case types.WhitelistUpdated:
		return e.PoolID
	}
	return ""
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func encode(msg *WSMessage) []byte {
	data, _ := json.Marshal(msg)
	return data
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(h, conn, uuid.NewString(), middleware.ClientIP(r))
	h.register <- client

	go client.writePump()
	go client.readPump()
}
