package stream

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 512
)

// Client is one websocket connection subscribed to a single run id's
// events.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	runID string
	send  chan []byte
}

// NewClient wires conn into hub under runID. Call Register, then run
// ReadPump/WritePump in their own goroutines.
func NewClient(hub *Hub, conn *websocket.Conn, runID string) *Client {
	return &Client{hub: hub, conn: conn, runID: runID, send: make(chan []byte, 256)}
}

// Register adds the client to its hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump discards client messages (server-push only) but keeps the
// connection's liveness detection alive.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("stream client read error", "run_id", c.runID, "error", err)
			}
			return
		}
	}
}

// WritePump delivers queued events to the client and keeps the connection
// alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
