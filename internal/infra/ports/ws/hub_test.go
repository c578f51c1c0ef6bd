package ws

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	connID uuid.UUID

	mu   sync.Mutex
	sent [][]byte
}

func newStubClient() *stubClient {
	return &stubClient{connID: uuid.New()}
}

func (c *stubClient) ConnID() uuid.UUID { return c.connID }
func (c *stubClient) UserID() uuid.UUID { return c.connID }

func (c *stubClient) Send(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, payload)
}

func (c *stubClient) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func runHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	req := require.New(t)
	hub := runHub(t)
	roomID := uuid.New()

	sender := newStubClient()
	receiver := newStubClient()
	outsider := newStubClient()

	hub.Join(sender, roomID)
	hub.Join(receiver, roomID)
	hub.Join(outsider, uuid.New())

	hub.Broadcast(roomID, []byte(`{"type":"new-message"}`), sender)

	// Leave flushes the command queue, so ordering is deterministic here.
	req.ElementsMatch([]uuid.UUID{roomID}, hub.Leave(receiver))

	req.Equal(1, receiver.sentCount())
	req.Equal(0, sender.sentCount())
	req.Equal(0, outsider.sentCount())
}

func TestHub_LeaveReturnsJoinedRooms(t *testing.T) {
	req := require.New(t)
	hub := runHub(t)

	firstRoom := uuid.New()
	secondRoom := uuid.New()
	client := newStubClient()

	hub.Join(client, firstRoom)
	hub.Join(client, secondRoom)

	rooms := hub.Leave(client)
	req.ElementsMatch([]uuid.UUID{firstRoom, secondRoom}, rooms)

	// A second leave finds nothing.
	req.Empty(hub.Leave(client))

	// Broadcasts after leaving no longer reach the client.
	hub.Broadcast(firstRoom, []byte(`{}`), nil)
	req.Empty(hub.Leave(client))
	req.Equal(0, client.sentCount())
}

func TestHub_DuplicateJoinIsIdempotent(t *testing.T) {
	req := require.New(t)
	hub := runHub(t)
	roomID := uuid.New()
	client := newStubClient()

	hub.Join(client, roomID)
	hub.Join(client, roomID)

	hub.Broadcast(roomID, []byte(`{}`), nil)

	rooms := hub.Leave(client)
	req.Equal([]uuid.UUID{roomID}, rooms)
	req.Equal(1, client.sentCount())
}
