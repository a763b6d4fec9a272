package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, userID uint) *Client {
	return &Client{hub: h, send: make(chan []byte, 4), UserID: userID}
}

func TestSendToUserTargetsMatchingConnections(t *testing.T) {
	h := NewHub()
	go h.Run()

	budi := newTestClient(h, 7)
	sari := newTestClient(h, 9)
	h.register <- budi
	h.register <- sari

	require.Eventually(t, func() bool { return h.ClientCount() == 2 },
		time.Second, 5*time.Millisecond)

	h.SendToUser(7, []byte(`{"event":"order.status_changed"}`))

	select {
	case msg := <-budi.send:
		assert.JSONEq(t, `{"event":"order.status_changed"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("matching client never received the message")
	}

	select {
	case msg := <-sari.send:
		t.Fatalf("other user received %q", msg)
	default:
	}
}

func TestSendToUserSafeDuringRegistration(t *testing.T) {
	h := NewHub()
	go h.Run()

	const n = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= n; i++ {
			h.register <- newTestClient(h, uint(i))
		}
	}()

	// Callers hit SendToUser and ClientCount from request goroutines
	// while Run is still registering; this must not trip the race
	// detector or crash.
	for i := 1; i <= n; i++ {
		h.SendToUser(uint(i), []byte("ping"))
		_ = h.ClientCount()
	}
	<-done

	require.Eventually(t, func() bool { return h.ClientCount() == n },
		time.Second, 5*time.Millisecond)
}

func TestBroadcastDropsSaturatedClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	stuck := &Client{hub: h, send: make(chan []byte), UserID: 1} // unbuffered, never read
	healthy := newTestClient(h, 2)
	h.register <- stuck
	h.register <- healthy

	require.Eventually(t, func() bool { return h.ClientCount() == 2 },
		time.Second, 5*time.Millisecond)

	h.Broadcast <- []byte("promo")

	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 5*time.Millisecond, "unresponsive client gets evicted")

	select {
	case msg := <-healthy.send:
		assert.Equal(t, "promo", string(msg))
	case <-time.After(time.Second):
		t.Fatal("healthy client never received the broadcast")
	}
}
