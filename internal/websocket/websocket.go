package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/services"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message types sent to clients
const (
	TypePolls       = "polls"
	TypePollChanged = "poll_changed"
	TypePollDeleted = "poll_deleted"
	TypeError       = "error"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// PollViewer renders a group's polls for one viewer
type PollViewer interface {
	Views(ctx context.Context, groupID string, viewer services.Viewer) ([]services.PollView, error)
}

type groupMessage struct {
	groupID string
	message models.WSMessage
}

// Hub maintains the set of active clients per group and fans out change events
type Hub struct {
	log        logger.Logger
	polls      PollViewer
	clients    map[*Client]bool
	broadcast  chan groupMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan models.WSMessage
	groupID string
	viewer  string
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, polls PollViewer) *Hub {
	return &Hub{
		log:        log,
		polls:      polls,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan groupMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start begins the hub's main loop in a goroutine. The loop exits when ctx is done.
func (h *Hub) Start(ctx context.Context) {
	go h.run(ctx)
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Debug("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "group", client.groupID, "total_clients", total)

			go h.sendSnapshot(client)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "group", client.groupID, "total_clients", total)

		case gm := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if client.groupID != gm.groupID {
					continue
				}
				select {
				case client.send <- gm.message:
				default:
					// Client's send channel is full, unregister
					go h.leave(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// leave unregisters c unless the hub has already stopped
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// sendSnapshot sends the current board to a newly connected client
func (h *Hub) sendSnapshot(client *Client) {
	msg := models.WSMessage{Type: TypePolls}
	views, err := h.polls.Views(context.Background(), client.groupID, services.Viewer{Name: client.viewer})
	if err != nil {
		h.log.Warn("Failed to build poll snapshot", "group", client.groupID, "error", err)
		msg = models.WSMessage{Type: TypeError, Payload: map[string]string{"error": err.Error()}}
	} else {
		msg.Payload = views
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.clients[client] {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// BroadcastMessage sends a message to every client watching groupID. The
// message is dropped if the hub is not keeping up.
func (h *Hub) BroadcastMessage(groupID, msgType string, payload interface{}) {
	select {
	case h.broadcast <- groupMessage{
		groupID: groupID,
		message: models.WSMessage{Type: msgType, Payload: payload},
	}:
	default:
		h.log.Warn("Dropped broadcast", "group", groupID, "type", msgType)
	}
}

// PollChanged implements services.Broadcaster
func (h *Hub) PollChanged(groupID, pollID string) {
	h.BroadcastMessage(groupID, TypePollChanged, map[string]string{"poll_id": pollID})
}

// PollDeleted implements services.Broadcaster
func (h *Hub) PollDeleted(groupID, pollID string) {
	h.BroadcastMessage(groupID, TypePollDeleted, map[string]string{"poll_id": pollID})
}

// ClientCount returns the number of clients watching groupID
func (h *Hub) ClientCount(groupID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for client := range h.clients {
		if client.groupID == groupID {
			n++
		}
	}
	return n
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type, "group", c.groupID)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
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
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			msgBytes, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Failed to encode message", "type", message.Type, "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
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

// ServeWs handles websocket requests: /ws?group=<id>&as=<viewer>
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group")
	if groupID == "" {
		http.Error(w, "group is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan models.WSMessage, 256),
		groupID: groupID,
		viewer:  r.URL.Query().Get("as"),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
