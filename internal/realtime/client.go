package realtime

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS middleware on the rest of the API;
		// the ws handshake is authenticated by token instead.
		return true
	},
}

// Client is one websocket connection, bound to a user and optionally
// subscribed to a chat channel.
type Client struct {
	ID        string
	UserID    string
	ChannelID string

	hub    *Hub
	conn   *websocket.Conn
	send   chan *Envelope
	closed chan struct{}
}

// Inbound is a frame received from the client.
type Inbound struct {
	Content string `json:"content"`
}

// ServeClient upgrades the HTTP request and runs the read and write pumps.
// onMessage is invoked for each inbound frame; it may be nil for
// receive-only connections (the notification stream).
func (h *Hub) ServeClient(w http.ResponseWriter, r *http.Request, userID, channelID string, onMessage func(in *Inbound)) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChannelID: channelID,
		hub:       h,
		conn:      conn,
		send:      make(chan *Envelope, sendBufferSize),
		closed:    make(chan struct{}),
	}
	h.register <- c

	go c.writePump()
	c.readPump(onMessage)
	return nil
}

func (c *Client) readPump(onMessage func(in *Inbound)) {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var in Inbound
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("ws read error", "client_id", c.ID, "err", err)
			}
			return
		}
		if onMessage != nil {
			onMessage(&in)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// trySend queues the envelope without blocking; full buffers drop the frame.
func (c *Client) trySend(env *Envelope) {
	select {
	case c.send <- env:
	default:
	}
}

func (c *Client) close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
