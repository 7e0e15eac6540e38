package presence

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	frames    chan string
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written []map[string]any
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan string, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadJSON(v any) error {
	select {
	case raw, ok := <-f.frames:
		if !ok {
			return io.EOF
		}
		return json.Unmarshal([]byte(raw), v)
	case <-f.closed:
		return errors.New("use of closed connection")
	}
}

func (f *fakeConn) WriteJSON(v any) error {
	select {
	case <-f.closed:
		return errors.New("use of closed connection")
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	f.mu.Lock()
	f.written = append(f.written, decoded)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) writtenOps() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	ops := make([]float64, 0, len(f.written))
	for _, w := range f.written {
		op, _ := w["op"].(float64)
		ops = append(ops, op)
	}
	return ops
}

func (f *fakeConn) first() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		return nil
	}
	return f.written[0]
}

// fakeDialer hands out queued connections, then blocking ones.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	dials atomic.Int32
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.dials.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.conns) == 0 {
		return newFakeConn(), nil
	}
	conn := d.conns[0]
	d.conns = d.conns[1:]
	return conn, nil
}

func closedConn() *fakeConn {
	conn := newFakeConn()
	close(conn.frames)
	return conn
}

func TestClient_HelloSubscribesAndHeartbeats(t *testing.T) {
	conn := newFakeConn()
	conn.frames <- `{"op":1,"d":{"heartbeat_interval":20}}`

	dialer := &fakeDialer{conns: []*fakeConn{conn}}
	client := NewClient(ClientConfig{
		URL:       "wss://relay.test/socket",
		DiscordID: "94490510688792576",
		Dialer:    dialer,
	})

	client.Start(context.Background())
	defer client.Stop()

	require.Eventually(t, func() bool { return client.State() == StateSubscribed }, time.Second, 5*time.Millisecond)

	first := conn.first()
	require.NotNil(t, first)
	assert.Equal(t, float64(OpInitialize), first["op"])
	assert.Equal(t, map[string]any{"subscribe_to_id": "94490510688792576"}, first["d"])

	require.Eventually(t, func() bool {
		heartbeats := 0
		for _, op := range conn.writtenOps() {
			if op == OpHeartbeat {
				heartbeats++
			}
		}
		return heartbeats >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestClient_EventsReplaceSnapshot(t *testing.T) {
	conn := newFakeConn()
	updates := make(chan *Snapshot, 4)

	client := NewClient(ClientConfig{
		URL:       "wss://relay.test/socket",
		DiscordID: "1",
		Dialer:    &fakeDialer{conns: []*fakeConn{conn}},
		OnUpdate:  func(s *Snapshot) { updates <- s },
	})

	client.Start(context.Background())
	defer client.Stop()

	assert.Nil(t, client.Snapshot())

	conn.frames <- `{"op":1,"d":{"heartbeat_interval":30000}}`
	conn.frames <- `{"op":0,"t":"INIT_STATE","d":{"discord_status":"online","activities":[{"type":4,"state":"hi"}]}}`

	select {
	case s := <-updates:
		assert.Equal(t, StatusOnline, s.DiscordStatus)
		require.Len(t, s.Activities, 1)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	conn.frames <- `{"op":0,"t":"UNRELATED","d":{"discord_status":"dnd"}}`
	conn.frames <- `{"op":0,"t":"PRESENCE_UPDATE","d":{"discord_status":"idle"}}`

	select {
	case s := <-updates:
		assert.Equal(t, StatusIdle, s.DiscordStatus)
		assert.Empty(t, s.Activities)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	assert.Equal(t, StatusIdle, client.Snapshot().DiscordStatus)
}

func TestClient_ReconnectsOnceAfterDelay(t *testing.T) {
	dialer := &fakeDialer{conns: []*fakeConn{closedConn()}}
	client := NewClient(ClientConfig{
		URL:            "wss://relay.test/socket",
		DiscordID:      "1",
		ReconnectDelay: 50 * time.Millisecond,
		Dialer:         dialer,
	})

	client.Start(context.Background())
	defer client.Stop()

	require.Eventually(t, func() bool { return dialer.dials.Load() == 1 }, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), dialer.dials.Load(), "reconnect must wait for the delay")

	require.Eventually(t, func() bool { return dialer.dials.Load() == 2 }, time.Second, time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(2), dialer.dials.Load(), "exactly one reconnect per disconnect")
}

func TestClient_StopSuppressesPendingReconnect(t *testing.T) {
	dialer := &fakeDialer{conns: []*fakeConn{closedConn()}}
	client := NewClient(ClientConfig{
		URL:            "wss://relay.test/socket",
		DiscordID:      "1",
		ReconnectDelay: 100 * time.Millisecond,
		Dialer:         dialer,
	})

	client.Start(context.Background())

	require.Eventually(t, func() bool {
		return dialer.dials.Load() == 1 && client.State() == StateDisconnected
	}, time.Second, time.Millisecond)

	client.Stop()
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(1), dialer.dials.Load())
	assert.Equal(t, StateDisconnected, client.State())
	assert.Nil(t, client.Snapshot())
}

func TestClient_StopClosesLiveConnection(t *testing.T) {
	conn := newFakeConn()
	conn.frames <- `{"op":1,"d":{"heartbeat_interval":30000}}`
	conn.frames <- `{"op":0,"t":"INIT_STATE","d":{"discord_status":"dnd"}}`

	dialer := &fakeDialer{conns: []*fakeConn{conn}}
	client := NewClient(ClientConfig{URL: "wss://relay.test/socket", DiscordID: "1", Dialer: dialer})

	client.Start(context.Background())
	require.Eventually(t, func() bool { return client.Snapshot() != nil }, time.Second, time.Millisecond)

	client.Stop()

	select {
	case <-conn.closed:
	default:
		t.Fatal("connection was not closed")
	}
	assert.Nil(t, client.Snapshot())
	assert.Equal(t, int32(1), dialer.dials.Load())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "awaiting_hello", StateAwaitingHello.String())
	assert.Equal(t, "subscribed", StateSubscribed.String())
}
