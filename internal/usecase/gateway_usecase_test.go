package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"roomchat/internal/domain/events"
	"roomchat/internal/infra/adapters/memory"
)

type fakeClient struct {
	connID uuid.UUID
	userID uuid.UUID

	mu   sync.Mutex
	sent [][]byte
}

func newFakeClient(userID uuid.UUID) *fakeClient {
	return &fakeClient{connID: uuid.New(), userID: userID}
}

func (c *fakeClient) ConnID() uuid.UUID { return c.connID }
func (c *fakeClient) UserID() uuid.UUID { return c.userID }

func (c *fakeClient) Send(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, payload)
}

func (c *fakeClient) received(t *testing.T) []events.Event {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]events.Event, 0, len(c.sent))
	for _, payload := range c.sent {
		var e events.Event
		require.NoError(t, json.Unmarshal(payload, &e))
		out = append(out, e)
	}

	return out
}

// fakeHub is a synchronous, single-goroutine RoomBroadcaster for tests.
type fakeHub struct {
	rooms map[uuid.UUID]map[GatewayClient]struct{}
}

func newFakeHub() *fakeHub {
	return &fakeHub{rooms: make(map[uuid.UUID]map[GatewayClient]struct{})}
}

func (h *fakeHub) Join(client GatewayClient, roomID uuid.UUID) {
	group, ok := h.rooms[roomID]
	if !ok {
		group = make(map[GatewayClient]struct{})
		h.rooms[roomID] = group
	}
	group[client] = struct{}{}
}

func (h *fakeHub) Leave(client GatewayClient) []uuid.UUID {
	var rooms []uuid.UUID
	for roomID, group := range h.rooms {
		if _, ok := group[client]; ok {
			rooms = append(rooms, roomID)
			delete(group, client)
		}
	}
	return rooms
}

func (h *fakeHub) Broadcast(roomID uuid.UUID, payload []byte, exclude GatewayClient) {
	for client := range h.rooms[roomID] {
		if client == exclude {
			continue
		}
		client.Send(payload)
	}
}

func event(t *testing.T, eventType string, payload any) events.Event {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	return events.Event{Type: eventType, Data: data}
}

func eventTypes(t *testing.T, c *fakeClient) []string {
	t.Helper()

	var types []string
	for _, e := range c.received(t) {
		types = append(types, e.Type)
	}

	return types
}

func newGatewayFixture() (GatewayUsecase, *fakeHub, memory.PresenceRepository, memory.TypingRepository) {
	presenceRepo := memory.NewPresenceRepository()
	typingRepo := memory.NewTypingRepository()
	hub := newFakeHub()
	uc := NewGatewayUsecase(presenceRepo, typingRepo, hub)

	return uc, hub, presenceRepo, typingRepo
}

func TestGateway_UserOnlineBroadcastsStatus(t *testing.T) {
	req := require.New(t)
	uc, hub, presenceRepo, _ := newGatewayFixture()
	ctx := context.Background()
	roomID := uuid.New()

	alice := newFakeClient(uuid.New())
	bob := newFakeClient(uuid.New())

	uc.HandleEvent(ctx, alice, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))
	uc.HandleEvent(ctx, bob, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))
	req.Len(hub.rooms[roomID], 2)

	uc.HandleEvent(ctx, alice, event(t, events.TypeUserOnline, events.UserOnline{
		UserID: alice.UserID(),
		RoomID: roomID,
	}))

	req.True(presenceRepo.IsOnline(alice.UserID()))

	// Online status reaches everyone in the room, the sender included.
	req.Contains(eventTypes(t, bob), events.TypeUserStatusChange)
	req.Contains(eventTypes(t, alice), events.TypeUserStatusChange)
}

func TestGateway_SendMessageRelayedToOthersOnly(t *testing.T) {
	req := require.New(t)
	uc, _, _, _ := newGatewayFixture()
	ctx := context.Background()
	roomID := uuid.New()

	alice := newFakeClient(uuid.New())
	bob := newFakeClient(uuid.New())

	uc.HandleEvent(ctx, alice, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))
	uc.HandleEvent(ctx, bob, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))

	uc.HandleEvent(ctx, alice, event(t, events.TypeSendMessage, events.SendMessage{
		RoomID:  roomID,
		Message: json.RawMessage(`{"content":"hi"}`),
	}))

	req.Contains(eventTypes(t, bob), events.TypeNewMessage)
	req.NotContains(eventTypes(t, alice), events.TypeNewMessage)
}

func TestGateway_TypingLifecycle(t *testing.T) {
	req := require.New(t)
	uc, _, _, typingRepo := newGatewayFixture()
	ctx := context.Background()
	roomID := uuid.New()

	alice := newFakeClient(uuid.New())
	bob := newFakeClient(uuid.New())

	uc.HandleEvent(ctx, alice, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))
	uc.HandleEvent(ctx, bob, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))

	uc.HandleEvent(ctx, alice, event(t, events.TypeTypingStart, events.TypingStart{
		RoomID:   roomID,
		UserID:   alice.UserID(),
		UserName: "alice",
	}))

	req.Contains(typingRepo.Typers(roomID), alice.UserID())
	req.Contains(eventTypes(t, bob), events.TypeUserTyping)

	uc.HandleEvent(ctx, alice, event(t, events.TypeTypingStop, events.TypingStop{
		RoomID: roomID,
		UserID: alice.UserID(),
	}))

	req.NotContains(typingRepo.Typers(roomID), alice.UserID())
	req.Contains(eventTypes(t, bob), events.TypeUserStoppedTyping)
}

func TestGateway_UnknownEventSendsError(t *testing.T) {
	req := require.New(t)
	uc, _, _, _ := newGatewayFixture()

	alice := newFakeClient(uuid.New())

	uc.HandleEvent(context.Background(), alice, events.Event{Type: "no-such-event"})

	received := alice.received(t)
	req.Len(received, 1)
	req.Equal(events.TypeError, received[0].Type)
}

func TestGateway_DisconnectCleansUp(t *testing.T) {
	req := require.New(t)
	uc, hub, presenceRepo, typingRepo := newGatewayFixture()
	ctx := context.Background()
	roomID := uuid.New()
	otherRoomID := uuid.New()

	alice := newFakeClient(uuid.New())
	bob := newFakeClient(uuid.New())
	carol := newFakeClient(uuid.New())

	uc.HandleEvent(ctx, alice, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))
	uc.HandleEvent(ctx, bob, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: roomID}))
	uc.HandleEvent(ctx, carol, event(t, events.TypeJoinRoom, events.JoinRoom{RoomID: otherRoomID}))

	uc.HandleEvent(ctx, alice, event(t, events.TypeUserOnline, events.UserOnline{
		UserID: alice.UserID(),
		RoomID: roomID,
	}))
	uc.HandleEvent(ctx, alice, event(t, events.TypeTypingStart, events.TypingStart{
		RoomID:   roomID,
		UserID:   alice.UserID(),
		UserName: "alice",
	}))

	uc.HandleDisconnect(ctx, alice)

	req.False(presenceRepo.IsOnline(alice.UserID()))
	req.NotContains(typingRepo.Typers(roomID), alice.UserID())
	req.NotContains(hub.rooms[roomID], GatewayClient(alice))

	// Room members see the typing stop and the offline status.
	req.Contains(eventTypes(t, bob), events.TypeUserStoppedTyping)
	req.Contains(eventTypes(t, bob), events.TypeUserStatusChange)

	// The offline broadcast is scoped to alice's rooms.
	req.NotContains(eventTypes(t, carol), events.TypeUserStatusChange)
}

func TestGateway_DisconnectOfStaleConnKeepsNewPresence(t *testing.T) {
	req := require.New(t)
	uc, _, presenceRepo, _ := newGatewayFixture()
	ctx := context.Background()
	userID := uuid.New()
	roomID := uuid.New()

	stale := newFakeClient(userID)
	fresh := newFakeClient(userID)

	uc.HandleEvent(ctx, stale, event(t, events.TypeUserOnline, events.UserOnline{UserID: userID, RoomID: roomID}))
	uc.HandleEvent(ctx, fresh, event(t, events.TypeUserOnline, events.UserOnline{UserID: userID, RoomID: roomID}))

	// The stale connection going away must not mark the reconnected user offline.
	uc.HandleDisconnect(ctx, stale)
	req.True(presenceRepo.IsOnline(userID))

	uc.HandleDisconnect(ctx, fresh)
	req.False(presenceRepo.IsOnline(userID))
}
