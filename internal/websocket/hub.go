package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/storefront/internal/cartview"
	"github.com/ikkim/storefront/pkg/logger"
)

// ClientMessage is what a browser tab may send over the socket
type ClientMessage struct {
	Type string `json:"type"` // refresh
}

// CartMessage carries a re-rendered cart to the browser
type CartMessage struct {
	Type string           `json:"type"` // cart
	Cart cartview.Regions `json:"cart"`
}

// RefreshFunc returns the current regions of a session's cart.
type RefreshFunc func(sessionID string) (cartview.Regions, bool)

// Client is one open tab
type Client struct {
	Hub           *Hub
	Conn          *Conn
	SessionID     string
	Send          chan []byte
	MessageCount  int       // messages received in the current second
	LastResetTime time.Time // start of the current rate window
	RateMu        sync.Mutex
}

// NewClient wires a connection to the hub for one session.
func NewClient(hub *Hub, conn *Conn, sessionID string) *Client {
	return &Client{
		Hub:           hub,
		Conn:          conn,
		SessionID:     sessionID,
		Send:          make(chan []byte, 64),
		LastResetTime: time.Now(),
	}
}

// Hub fans cart updates out to every tab of a session
type Hub struct {
	// session id -> open tabs
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	refreshMu sync.RWMutex
	refresh   RefreshFunc

	mu sync.RWMutex
}

// BroadcastMessage is a payload for every tab of one session
type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// SetRefresh installs the lookup used to answer "refresh" messages.
func (h *Hub) SetRefresh(fn RefreshFunc) {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()
	h.refresh = fn
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			tabs := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"session_id": client.SessionID,
				"tabs":       tabs,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[message.SessionID] {
				select {
				case client.Send <- message.Message:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"session_id": message.SessionID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.SessionID)
	} else {
		h.clients[client.SessionID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"session_id":     client.SessionID,
		"remaining_tabs": len(kept),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// SendToSession queues a message for every tab of the session. Messages are
// dropped when the broadcast queue is full.
func (h *Hub) SendToSession(sessionID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	case <-h.done:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return nil
}

// CartSink returns a cartview.Sink pushing re-renders to the session's tabs.
func (h *Hub) CartSink(sessionID string) cartview.Sink {
	return cartview.SinkFunc(func(_ context.Context, regions cartview.Regions) {
		if !h.IsSessionOnline(sessionID) {
			return
		}
		h.SendToSession(sessionID, CartMessage{Type: "cart", Cart: regions})
	})
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// IsSessionOnline reports whether the session has an open tab
func (h *Hub) IsSessionOnline(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

// Tabs is the number of open tabs of a session
func (h *Hub) Tabs(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// HandleClientMessage answers a "refresh" with the current cart regions.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"session_id": client.SessionID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		return
	}
	if msg.Type != "refresh" {
		return
	}

	h.refreshMu.RLock()
	refresh := h.refresh
	h.refreshMu.RUnlock()
	if refresh == nil {
		return
	}
	regions, ok := refresh(client.SessionID)
	if !ok {
		return
	}
	if err := h.SendToSession(client.SessionID, CartMessage{Type: "cart", Cart: regions}); err != nil {
		logger.Error("Failed to answer refresh", err, map[string]interface{}{
			"session_id": client.SessionID,
		})
	}
}
