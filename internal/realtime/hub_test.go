package realtime

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestClient builds a client with no underlying connection; frames land in
// the send channel where tests can observe them.
func newTestClient(id, userID, channelID string, hub *Hub) *Client {
	return &Client{
		ID:        id,
		UserID:    userID,
		ChannelID: channelID,
		hub:       hub,
		send:      make(chan *Envelope, 10),
		closed:    make(chan struct{}),
	}
}

func receive(t *testing.T, c *Client) *Envelope {
	t.Helper()
	select {
	case env := <-c.send:
		return env
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("client %s received no frame", c.ID)
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case env := <-c.send:
		t.Fatalf("client %s unexpectedly received %q frame", c.ID, env.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := newTestHub()
	hub.Start()
	defer hub.Stop()

	c := newTestClient("c1", "u1", "chan-1", hub)
	hub.register <- c
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.unregister <- c
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	select {
	case <-c.closed:
	default:
		t.Fatal("unregistered client was not closed")
	}
}

func TestHub_BroadcastToChannel(t *testing.T) {
	hub := newTestHub()
	subscriberA := newTestClient("a", "u1", "chan-1", hub)
	subscriberB := newTestClient("b", "u2", "chan-1", hub)
	other := newTestClient("c", "u3", "chan-2", hub)
	hub.addClient(subscriberA)
	hub.addClient(subscriberB)
	hub.addClient(other)

	hub.BroadcastToChannel("chan-1", map[string]string{"content": "hello"})

	for _, c := range []*Client{subscriberA, subscriberB} {
		env := receive(t, c)
		assert.Equal(t, TypeChatMessage, env.Type)
		assert.Equal(t, "chan-1", env.ChannelID)
	}
	assertSilent(t, other)
}

func TestHub_PushToUser(t *testing.T) {
	hub := newTestHub()
	// Two connections for the same user: a channel stream and a
	// notification stream. Both must receive the push.
	first := newTestClient("a", "u1", "chan-1", hub)
	second := newTestClient("b", "u1", "", hub)
	other := newTestClient("c", "u2", "", hub)
	hub.addClient(first)
	hub.addClient(second)
	hub.addClient(other)

	hub.PushToUser("u1", map[string]string{"title": "Registration approved"})

	for _, c := range []*Client{first, second} {
		env := receive(t, c)
		assert.Equal(t, TypeNotification, env.Type)
		assert.Empty(t, env.ChannelID)
	}
	assertSilent(t, other)
}

func TestHub_SlowClientDropsFrames(t *testing.T) {
	hub := newTestHub()
	slow := newTestClient("a", "u1", "chan-1", hub)
	slow.send = make(chan *Envelope, 1)
	hub.addClient(slow)

	// The second frame must be dropped, not block the broadcaster.
	done := make(chan struct{})
	go func() {
		hub.BroadcastToChannel("chan-1", "first")
		hub.BroadcastToChannel("chan-1", "second")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
	require.Len(t, slow.send, 1)
	env := <-slow.send
	assert.Equal(t, "first", env.Data)
}

func TestHub_StopIdempotent(t *testing.T) {
	hub := newTestHub()
	hub.Start()

	c := newTestClient("a", "u1", "chan-1", hub)
	hub.register <- c
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.Stop()
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	select {
	case <-c.closed:
	default:
		t.Fatal("client left open after Stop")
	}

	// Registrations after Stop are rejected and closed immediately.
	late := newTestClient("b", "u2", "", hub)
	hub.addClient(late)
	assert.Equal(t, 0, hub.ClientCount())
	select {
	case <-late.closed:
	default:
		t.Fatal("late client left open after Stop")
	}
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := newTestHub()
	ghost := newTestClient("ghost", "u1", "", hub)
	hub.removeClient(ghost)
	assert.Equal(t, 0, hub.ClientCount())
}
