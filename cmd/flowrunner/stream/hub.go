// Package stream broadcasts a workflow run's BlockLog events live to
// connected clients, adapted from the teacher's cmd/fanout hub/client pair.
// The teacher fans tokens out by username; this package fans block logs out
// by run id, since a run (not a user) is what a websocket client subscribes
// to here.
package stream

import (
	"encoding/json"
	"sync"

	"github.com/flowforge/workflowengine/internal/types"
)

// Hub maintains active WebSocket connections and broadcasts ConsoleEvents
// to every client subscribed to the event's run id.
type Hub struct {
	connections map[string][]*Client
	mutex       sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan types.ConsoleEvent
}

// NewHub creates an empty Hub. Call Run in its own goroutine before use.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string][]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan types.ConsoleEvent, 256),
	}
}

// Run is the hub's serialization point: every mutation of connections and
// every broadcast fan-out happens on this one goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case event := <-h.broadcast:
			h.broadcastToRun(event)
		}
	}
}

// Publish satisfies types.LogConsoleFunc: it hands the event to the hub's
// run loop without blocking the caller (the channel is buffered; a full
// buffer drops the event rather than stalling block execution).
func (h *Hub) Publish(event types.ConsoleEvent) {
	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.connections[client.runID] = append(h.connections[client.runID], client)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients := h.connections[client.runID]
	for i, c := range clients {
		if c == client {
			h.connections[client.runID] = append(clients[:i], clients[i+1:]...)
			close(client.send)
			if len(h.connections[client.runID]) == 0 {
				delete(h.connections, client.runID)
			}
			break
		}
	}
}

func (h *Hub) broadcastToRun(event types.ConsoleEvent) {
	h.mutex.RLock()
	clients := h.connections[event.WorkflowID]
	h.mutex.RUnlock()
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			close(client.send)
		}
	}
}
