package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/Parth-05/RideShare/internal/models"
	"github.com/Parth-05/RideShare/internal/observability"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client
type Client struct {
	ID   uint
	Role string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
	done chan struct{}
}

// Hub maintains the set of live connections: the shared driver pool and one
// addressable channel per customer. It is the only place that touches
// transport-layer connection objects.
type Hub struct {
	drivers    map[*Client]bool
	customers  map[uint]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		drivers:    make(map[*Client]bool),
		customers:  make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)
			log.Printf("Client %d connected as %s", client.ID, client.Role)

		case client := <-h.unregister:
			h.remove(client)
			log.Printf("Client %d disconnected", client.ID)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if client.Role == string(models.RoleDriver) {
		h.drivers[client] = true
	} else {
		// One live channel per customer; a reconnect replaces the old one.
		// The evicted client is uncounted here, so its later unregister
		// (which early-returns in remove) must not decrement again.
		if old, ok := h.customers[client.ID]; ok && old != client {
			close(old.done)
			observability.ConnectedClients.Dec()
		}
		h.customers[client.ID] = client
	}
	observability.ConnectedClients.Inc()
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if client.Role == string(models.RoleDriver) {
		if _, ok := h.drivers[client]; !ok {
			return
		}
		delete(h.drivers, client)
		close(client.done)
	} else {
		if current, ok := h.customers[client.ID]; !ok || current != client {
			// Already replaced by a reconnect; its done channel is closed.
			return
		}
		delete(h.customers, client.ID)
		close(client.done)
	}
	observability.ConnectedClients.Dec()
}

// BroadcastToDrivers sends a message to every member of the driver pool.
// The recipient set is snapshotted first; a join or leave during the send
// never corrupts the iteration.
func (h *Hub) BroadcastToDrivers(message []byte) {
	h.mutex.RLock()
	targets := make([]*Client, 0, len(h.drivers))
	for client := range h.drivers {
		targets = append(targets, client)
	}
	h.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- message:
		default:
			// Client's send channel is full, skip
			log.Printf("Warning: Could not send to driver %d (channel full)", client.ID)
		}
	}
}

// SendToCustomer sends a message to a specific customer's channel, if one is
// registered. A missing or slow customer is not an error.
func (h *Hub) SendToCustomer(customerID uint, message []byte) {
	h.mutex.RLock()
	client, ok := h.customers[customerID]
	h.mutex.RUnlock()
	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		log.Printf("Warning: Could not send to customer %d (channel full)", customerID)
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.drivers) + len(h.customers)
}

// WebSocket message envelope
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// HandleWebSocket handles WebSocket connections. Drivers join the shared
// pool, customers get their own channel; membership follows the
// authenticated identity, never a client-supplied room name.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   userID,
		Role: role,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
		done: make(chan struct{}),
	}

	client.Hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump drains the connection until it closes; leave is implicit on
// disconnect.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for {
		select {
		case message := <-c.Send:
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

			// Log message type for debugging
			var msg WebSocketMessage
			if err := json.Unmarshal(message, &msg); err == nil {
				log.Printf("[WS] Sent to client %d (%s): %s", c.ID, c.Role, msg.Type)
			}

		case <-c.done:
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
