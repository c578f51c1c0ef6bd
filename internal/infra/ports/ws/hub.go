package ws

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"roomchat/internal/usecase"
)

type joinCmd struct {
	client usecase.GatewayClient
	roomID uuid.UUID
}

type leaveCmd struct {
	client usecase.GatewayClient
	reply  chan []uuid.UUID
}

type broadcastCmd struct {
	roomID  uuid.UUID
	payload []byte
	exclude usecase.GatewayClient
}

// Hub owns the room membership of live connections. All state is confined to
// the Run goroutine; the exported methods feed a single command channel, so
// commands from one caller are applied in the order they were issued.
type Hub struct {
	rooms    map[uuid.UUID]map[usecase.GatewayClient]struct{}
	byClient map[usecase.GatewayClient]map[uuid.UUID]struct{}

	commands chan any
}

func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[usecase.GatewayClient]struct{}),
		byClient: make(map[usecase.GatewayClient]map[uuid.UUID]struct{}),
		commands: make(chan any, 256),
	}
}

// Run processes hub commands until ctx is cancelled. Must be started before
// any connection is accepted.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("ws hub stopped")
			return
		case cmd := <-h.commands:
			switch c := cmd.(type) {
			case joinCmd:
				h.handleJoin(c)
			case leaveCmd:
				c.reply <- h.handleLeave(c.client)
			case broadcastCmd:
				h.handleBroadcast(c)
			}
		}
	}
}

func (h *Hub) Join(client usecase.GatewayClient, roomID uuid.UUID) {
	h.commands <- joinCmd{client: client, roomID: roomID}
}

func (h *Hub) Leave(client usecase.GatewayClient) []uuid.UUID {
	cmd := leaveCmd{client: client, reply: make(chan []uuid.UUID, 1)}
	h.commands <- cmd
	return <-cmd.reply
}

func (h *Hub) Broadcast(roomID uuid.UUID, payload []byte, exclude usecase.GatewayClient) {
	h.commands <- broadcastCmd{roomID: roomID, payload: payload, exclude: exclude}
}

func (h *Hub) handleJoin(cmd joinCmd) {
	group, ok := h.rooms[cmd.roomID]
	if !ok {
		group = make(map[usecase.GatewayClient]struct{})
		h.rooms[cmd.roomID] = group
	}
	group[cmd.client] = struct{}{}

	joined, ok := h.byClient[cmd.client]
	if !ok {
		joined = make(map[uuid.UUID]struct{})
		h.byClient[cmd.client] = joined
	}
	joined[cmd.roomID] = struct{}{}
}

func (h *Hub) handleLeave(client usecase.GatewayClient) []uuid.UUID {
	joined := h.byClient[client]
	delete(h.byClient, client)

	rooms := make([]uuid.UUID, 0, len(joined))

	for roomID := range joined {
		rooms = append(rooms, roomID)

		group := h.rooms[roomID]
		delete(group, client)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}

	return rooms
}

func (h *Hub) handleBroadcast(cmd broadcastCmd) {
	for client := range h.rooms[cmd.roomID] {
		if client == cmd.exclude {
			continue
		}
		client.Send(cmd.payload)
	}
}
