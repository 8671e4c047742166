package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	return hub
}

func TestNotifyUser_Unregistered(t *testing.T) {
	t.Parallel()
	hub := newRunningHub(t)

	// No channel registered for the identity: silently reports non-delivery.
	assert.False(t, hub.NotifyUser("nobody", []byte("hello")))
}

func TestNotifyUser_Delivery(t *testing.T) {
	t.Parallel()
	hub := newRunningHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client
	hub.Associate(client, "user-1")

	require.True(t, hub.NotifyUser("user-1", []byte("ping")))

	select {
	case msg := <-client.Send:
		assert.Equal(t, "ping", string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected message on client send channel")
	}
}

func TestAssociate_OverwritesPreviousHandle(t *testing.T) {
	t.Parallel()
	hub := newRunningHub(t)

	first := NewClient(hub, nil)
	second := NewClient(hub, nil)
	hub.Register <- first
	hub.Register <- second

	hub.Associate(first, "user-1")
	hub.Associate(second, "user-1")

	// The newer connection owns the identity; the stale one gets nothing.
	require.True(t, hub.NotifyUser("user-1", []byte("ping")))
	select {
	case msg := <-second.Send:
		assert.Equal(t, "ping", string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected message on the newer client")
	}
	assert.Empty(t, first.Send)
}

func TestUnregister_RemovesIdentity(t *testing.T) {
	t.Parallel()
	hub := newRunningHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client
	hub.Associate(client, "user-1")

	hub.Unregister <- client

	assert.Eventually(t, func() bool {
		return !hub.NotifyUser("user-1", []byte("ping"))
	}, time.Second, 10*time.Millisecond)
}

func TestUnregister_KeepsNewerHandle(t *testing.T) {
	t.Parallel()
	hub := newRunningHub(t)

	first := NewClient(hub, nil)
	second := NewClient(hub, nil)
	hub.Register <- first
	hub.Register <- second

	hub.Associate(first, "user-1")
	hub.Associate(second, "user-1")

	// The stale connection going away must not unhook the identity from the
	// connection that replaced it.
	hub.Unregister <- first

	assert.Eventually(t, func() bool {
		if !hub.NotifyUser("user-1", []byte("ping")) {
			return false
		}
		select {
		case <-second.Send:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

// TestNotifyUser_ConcurrentWithDisconnect hammers notifications against
// clients that connect and disconnect the whole time. A disconnect closes
// the client's send channel; a notification landing on it after the close
// would panic the sender.
func TestNotifyUser_ConcurrentWithDisconnect(t *testing.T) {
	t.Parallel()
	hub := newRunningHub(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			client := NewClient(hub, nil)
			hub.Register <- client
			hub.Associate(client, "user-1")
			hub.Unregister <- client
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
			hub.NotifyUser("user-1", []byte("ping"))
		}
	}
}

func TestNotifyUser_FullBufferDropsMessage(t *testing.T) {
	t.Parallel()
	hub := newRunningHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client
	hub.Associate(client, "user-1")

	// Fill the send buffer; nothing is draining it.
	for i := 0; i < cap(client.Send); i++ {
		require.True(t, hub.NotifyUser("user-1", []byte("x")))
	}
	assert.False(t, hub.NotifyUser("user-1", []byte("overflow")))
}
