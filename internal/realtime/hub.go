package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// Envelope is the JSON frame sent to and received from websocket clients.
type Envelope struct {
	Type      string    `json:"type"`
	ChannelID string    `json:"channel_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Frame types.
const (
	TypeChatMessage  = "chat_message"
	TypeNotification = "notification"
)

// Hub maintains the set of connected clients, indexed by client ID, user ID,
// and subscribed chat channel. It implements domain.Pusher and
// services.Broadcaster.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client            // client ID -> client
	byUser    map[string]map[string]*Client // user ID -> clients
	byChannel map[string]map[string]*Client // channel ID -> clients

	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopped    bool

	logger *slog.Logger
}

// NewHub creates a Hub. Call Start before registering clients.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		byUser:     make(map[string]map[string]*Client),
		byChannel:  make(map[string]map[string]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

// Start begins the hub's event loop.
func (h *Hub) Start() {
	go h.run()
}

// Stop closes all client connections and halts the event loop.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
	h.byUser = make(map[string]map[string]*Client)
	h.byChannel = make(map[string]map[string]*Client)
	h.mu.Unlock()
	close(h.stop)
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		c.close()
		return
	}
	h.clients[c.ID] = c
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[string]*Client)
	}
	h.byUser[c.UserID][c.ID] = c
	if c.ChannelID != "" {
		if h.byChannel[c.ChannelID] == nil {
			h.byChannel[c.ChannelID] = make(map[string]*Client)
		}
		h.byChannel[c.ChannelID][c.ID] = c
	}
	h.logger.Debug("ws client connected", "client_id", c.ID, "user_id", c.UserID, "channel_id", c.ChannelID)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	if c.ChannelID != "" {
		if m := h.byChannel[c.ChannelID]; m != nil {
			delete(m, c.ID)
			if len(m) == 0 {
				delete(h.byChannel, c.ChannelID)
			}
		}
	}
	c.close()
	h.logger.Debug("ws client disconnected", "client_id", c.ID, "user_id", c.UserID)
}

// BroadcastToChannel sends the payload to every client subscribed to the
// chat channel. Slow clients are skipped, not awaited.
func (h *Hub) BroadcastToChannel(channelID string, payload any) {
	env := &Envelope{
		Type:      TypeChatMessage,
		ChannelID: channelID,
		Data:      payload,
		Timestamp: time.Now(),
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.byChannel[channelID] {
		c.trySend(env)
	}
}

// PushToUser sends the payload to every connection the user currently has
// open. Offline users are silently skipped.
func (h *Hub) PushToUser(userID string, payload any) {
	env := &Envelope{
		Type:      TypeNotification,
		Data:      payload,
		Timestamp: time.Now(),
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.byUser[userID] {
		c.trySend(env)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
