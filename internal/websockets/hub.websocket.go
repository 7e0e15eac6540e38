package websockets

import (
	"sync"

	"linkpage/internal/metrics"
)

type Hub struct {
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
	done       chan struct{}
}

func newHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, BROADCAST_CHANNEL_SIZE),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		done:       make(chan struct{}),
	}
}

// run owns client registration and fan out. A new client gets its snapshot
// here, so no broadcast can overtake it.
func (h *Hub) run(m *Manager) {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message, m)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	log := m.log.Function("registerClient")

	if source := m.snapshotSource(); source != nil {
		client.enqueue(newMessage(MESSAGE_TYPE_SNAPSHOT, source.Snapshot()))
	}

	m.hub.mutex.Lock()
	m.hub.clients[client.ID] = client
	count := len(m.hub.clients)
	m.hub.mutex.Unlock()

	metrics.WebsocketViewers.Set(float64(count))
	log.Debug("Viewer registered", "clientID", client.ID, "viewers", count)
}

func (m *Manager) unregisterClient(client *Client) {
	log := m.log.Function("unregisterClient")

	m.hub.mutex.Lock()
	if _, ok := m.hub.clients[client.ID]; !ok {
		m.hub.mutex.Unlock()
		return
	}
	delete(m.hub.clients, client.ID)
	count := len(m.hub.clients)
	m.hub.mutex.Unlock()

	client.close()
	metrics.WebsocketViewers.Set(float64(count))
	log.Debug("Viewer unregistered", "clientID", client.ID, "viewers", count)
}

// broadcastMessage never blocks the hub. A viewer whose queue is full misses
// the message; every message carries full state so the next one catches it up.
func (h *Hub) broadcastMessage(message Message, m *Manager) {
	log := m.log.Function("broadcastMessage")

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	dropped := 0
	for _, client := range h.clients {
		if !client.enqueue(message) {
			dropped++
		}
	}

	if dropped > 0 {
		log.Warn("Viewer queues full, dropped message",
			"messageType", message.Type,
			"dropped", dropped,
			"viewers", len(h.clients))
	}
}

func (h *Hub) count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
