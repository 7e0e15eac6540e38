package websockets

import (
	"sync"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_SNAPSHOT = "snapshot"
	MESSAGE_TYPE_PING     = "ping"
	MESSAGE_TYPE_PONG     = "pong"

	PING_INTERVAL          = 30 * time.Second
	PONG_TIMEOUT           = 60 * time.Second
	WRITE_TIMEOUT          = 10 * time.Second
	MAX_MESSAGE_SIZE       = 4 * 1024
	SEND_CHANNEL_SIZE      = 64
	BROADCAST_CHANNEL_SIZE = 256
)

type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessage(messageType string, data any) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SnapshotSource provides the full state a viewer receives on connect.
type SnapshotSource interface {
	Snapshot() any
}

// Client is one public viewer socket.
type Client struct {
	ID         string
	Connection *websocket.Conn
	Manager    *Manager

	mu     sync.Mutex
	closed bool
	send   chan Message
}

func newClient(conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:         uuid.New().String(),
		Connection: conn,
		Manager:    manager,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}
}

// enqueue queues a message without blocking. It reports false when the
// queue is full or the client is gone.
func (c *Client) enqueue(message Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

type Manager struct {
	hub    *Hub
	log    logger.Logger
	mu     sync.RWMutex
	source SnapshotSource
}

func New() *Manager {
	log := logger.New("websockets")

	manager := &Manager{
		hub: newHub(),
		log: log,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	return manager
}

func (m *Manager) SetSnapshotSource(source SnapshotSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = source
}

func (m *Manager) snapshotSource() SnapshotSource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.source
}

func (m *Manager) ViewerCount() int {
	return m.hub.count()
}

// Close stops the hub. Open sockets are closed by their own pumps.
func (m *Manager) Close() {
	close(m.hub.done)
}

// HandleWebSocket serves one viewer until the socket closes.
func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := newClient(c, m)
	m.hub.register <- client

	defer func() {
		m.hub.unregister <- client
		if err := c.Close(); err != nil {
			log.Debug("failed to close connection", "error", err, "clientID", client.ID)
		}
	}()

	go client.writePump()
	client.readPump()
}

// Broadcast queues a message for every viewer. It never blocks the caller.
func (m *Manager) Broadcast(messageType string, data any) {
	log := m.log.Function("Broadcast")

	message := newMessage(messageType, data)
	select {
	case m.hub.broadcast <- message:
	default:
		log.Warn("Broadcast channel is full, dropping message", "messageType", messageType)
	}
}

// readPump only keeps the read deadline alive and answers application pings.
func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				log.Warn("Unexpected close", "error", err, "clientID", c.ID)
			}
			return
		}

		if message.Type == MESSAGE_TYPE_PING {
			c.enqueue(newMessage(MESSAGE_TYPE_PONG, nil))
		}
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Warn("WebSocket write error", "error", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
