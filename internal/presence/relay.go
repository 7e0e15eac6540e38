package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"linkpage/internal/metrics"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gorilla/websocket"
)

// Relay opcodes
const (
	OpEvent      = 0
	OpHello      = 1
	OpInitialize = 2
	OpHeartbeat  = 3
)

const (
	EventInitState      = "INIT_STATE"
	EventPresenceUpdate = "PRESENCE_UPDATE"

	DefaultReconnectDelay    = 5 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	WriteTimeout             = 10 * time.Second
	ReadBufferSize           = 4096
	WriteBufferSize          = 1024
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingHello
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingHello:
		return "awaiting_hello"
	case StateSubscribed:
		return "subscribed"
	default:
		return "disconnected"
	}
}

// Conn is the part of a websocket connection the relay client uses.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

type frame struct {
	Op int             `json:"op"`
	T  string          `json:"t,omitempty"`
	D  json.RawMessage `json:"d,omitempty"`
}

type helloPayload struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type initializePayload struct {
	SubscribeToID string `json:"subscribe_to_id"`
}

type ClientConfig struct {
	URL            string
	DiscordID      string
	ReconnectDelay time.Duration
	Dialer         Dialer
	OnUpdate       func(snapshot *Snapshot)
}

// Client keeps one subscription to the presence relay alive until stopped.
type Client struct {
	url            string
	discordID      string
	reconnectDelay time.Duration
	dialer         Dialer
	onUpdate       func(snapshot *Snapshot)
	log            logger.Logger

	mu       sync.RWMutex
	state    State
	snapshot *Snapshot
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = NewWebsocketDialer()
	}

	return &Client{
		url:            cfg.URL,
		discordID:      cfg.DiscordID,
		reconnectDelay: cfg.ReconnectDelay,
		dialer:         cfg.Dialer,
		onUpdate:       cfg.OnUpdate,
		log:            logger.New("presence").File("relay").With("discordID", cfg.DiscordID),
		state:          StateDisconnected,
	}
}

func (c *Client) DiscordID() string {
	return c.discordID
}

// Start launches the connection loop. Calling Start on a running client is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(runCtx, c.done)
}

// Stop tears down the socket and suppresses any pending reconnect. The held
// snapshot is cleared.
func (c *Client) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	c.mu.Lock()
	c.snapshot = nil
	c.state = StateDisconnected
	c.mu.Unlock()
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Client) setSnapshot(snapshot *Snapshot) {
	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(snapshot)
	}
}

func (c *Client) run(ctx context.Context, done chan struct{}) {
	log := c.log.Function("run")
	defer close(done)

	for {
		c.setState(StateConnecting)
		err := c.session(ctx)
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			log.Info("Presence relay stopped")
			return
		}

		metrics.PresenceConnections.WithLabelValues(metrics.EventReconnect).Inc()
		log.Warn("Presence relay disconnected, reconnecting", "error", err, "delay", c.reconnectDelay)

		timer := time.NewTimer(c.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("Presence relay stopped before reconnect")
			return
		case <-timer.C:
		}
	}
}

// session runs one connection from dial to close.
func (c *Client) session(ctx context.Context) error {
	log := c.log.Function("session")

	conn, err := c.dialer.Dial(ctx, c.url)
	if err != nil {
		metrics.PresenceConnections.WithLabelValues(metrics.EventDialFailed).Inc()
		return log.Err("failed to dial presence relay", err, "url", c.url)
	}
	metrics.PresenceConnections.WithLabelValues(metrics.EventConnected).Inc()
	c.setState(StateAwaitingHello)

	sessionCtx, cancel := context.WithCancel(ctx)
	var heartbeats sync.WaitGroup
	defer func() {
		cancel()
		_ = conn.Close()
		heartbeats.Wait()
		metrics.PresenceConnections.WithLabelValues(metrics.EventDisconnect).Inc()
	}()

	go func() {
		<-sessionCtx.Done()
		_ = conn.Close()
	}()

	var writeMu sync.Mutex
	write := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	heartbeatStarted := false
	for {
		var msg frame
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch msg.Op {
		case OpHello:
			if heartbeatStarted {
				continue
			}

			interval := DefaultHeartbeatInterval
			var hello helloPayload
			if err := json.Unmarshal(msg.D, &hello); err == nil && hello.HeartbeatInterval > 0 {
				interval = time.Duration(hello.HeartbeatInterval) * time.Millisecond
			}

			heartbeatStarted = true
			heartbeats.Add(1)
			go func() {
				defer heartbeats.Done()
				c.heartbeat(sessionCtx, interval, write)
			}()

			if err := write(map[string]any{
				"op": OpInitialize,
				"d":  initializePayload{SubscribeToID: c.discordID},
			}); err != nil {
				return log.Err("failed to send subscribe", err)
			}

			c.setState(StateSubscribed)
			metrics.PresenceConnections.WithLabelValues(metrics.EventSubscribed).Inc()
			log.Info("Subscribed to presence relay", "heartbeat", interval)

		case OpEvent:
			if msg.T != EventInitState && msg.T != EventPresenceUpdate {
				continue
			}

			var snapshot Snapshot
			if err := json.Unmarshal(msg.D, &snapshot); err != nil {
				log.Warn("Ignoring malformed presence payload", "event", msg.T, "error", err)
				continue
			}
			c.setSnapshot(&snapshot)
		}
	}
}

func (c *Client) heartbeat(ctx context.Context, interval time.Duration, write func(any) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := write(map[string]any{"op": OpHeartbeat}); err != nil {
				c.log.Function("heartbeat").Warn("Heartbeat failed", "error", err)
				return
			}
		}
	}
}

type websocketDialer struct {
	dialer websocket.Dialer
}

func NewWebsocketDialer() Dialer {
	return &websocketDialer{
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   ReadBufferSize,
			WriteBufferSize:  WriteBufferSize,
		},
	}
}

func (d *websocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (w *websocketConn) ReadJSON(v any) error {
	return w.conn.ReadJSON(v)
}

func (w *websocketConn) WriteJSON(v any) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}

func (w *websocketConn) Close() error {
	return w.conn.Close()
}
