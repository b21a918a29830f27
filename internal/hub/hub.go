// Package hub streams engine events to browsers over SSE. Clients may
// narrow their stream with a ?types= filter; everything else receives
// every event.
package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"netograph/internal/service"
)

// Client is one connected SSE consumer
type Client struct {
	id     string
	events chan []byte
	types  map[service.EventType]bool // nil = all
}

func (c *Client) wants(t service.EventType) bool {
	return c.types == nil || c.types[t]
}

// Hub fans engine events out to connected SSE clients
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan service.Event
}

// New creates a hub subscribed to the event bus
func New(bus *service.EventBus) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan service.Event, 256),
	}
	bus.Subscribe(h.events)
	return h
}

// Run drives the hub's event loop until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("SSE client connected: %s (total: %d)", client.id, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.events)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("SSE client disconnected: %s (total: %d)", client.id, total)

		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

func (h *Hub) dispatch(event service.Event) {
	msg, err := formatSSE(event)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.wants(event.Type) {
			continue
		}
		select {
		case client.events <- msg:
		default:
			// Client is slow, skip this message
		}
	}
}

func formatSSE(event service.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data)), nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to an SSE stream
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := &Client{
		id:     fmt.Sprintf("%d", time.Now().UnixNano()),
		events: make(chan []byte, 64),
		types:  parseTypeFilter(r.URL.Query().Get("types")),
	}

	h.register <- client
	defer func() { h.unregister <- client }()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// parseTypeFilter reads a comma-separated ?types= value; empty means
// no filtering
func parseTypeFilter(raw string) map[service.EventType]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	types := make(map[service.EventType]bool)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			types[service.EventType(part)] = true
		}
	}
	if len(types) == 0 {
		return nil
	}
	return types
}
