package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"roomchat/internal/application/constant"
	"roomchat/internal/application/metric"
	"roomchat/internal/domain/events"
	"roomchat/internal/infra/adapters/memory"
)

// GatewayClient is one realtime connection as the gateway sees it.
// Implemented by the ws port.
type GatewayClient interface {
	ConnID() uuid.UUID
	UserID() uuid.UUID

	// Send queues a payload for delivery. Fire-and-forget: a slow client is
	// disconnected rather than awaited.
	Send(payload []byte)
}

// RoomBroadcaster fans payloads out to a room's subscribed connections.
// Implemented by the ws hub.
type RoomBroadcaster interface {
	Join(client GatewayClient, roomID uuid.UUID)

	// Leave removes the client from every room group and returns the rooms
	// it was subscribed to.
	Leave(client GatewayClient) []uuid.UUID

	Broadcast(roomID uuid.UUID, payload []byte, exclude GatewayClient)
}

// GatewayUsecase handles realtime events. Durable mutations never happen
// here: send-message and message-read arrive after the REST call already
// persisted them, and are relayed as-is.
type GatewayUsecase interface {
	HandleEvent(ctx context.Context, client GatewayClient, event events.Event)
	HandleDisconnect(ctx context.Context, client GatewayClient)
}

type gatewayUsecase struct {
	presenceRepo memory.PresenceRepository
	typingRepo   memory.TypingRepository
	hub          RoomBroadcaster
}

func NewGatewayUsecase(
	presenceRepo memory.PresenceRepository,
	typingRepo memory.TypingRepository,
	hub RoomBroadcaster,
) GatewayUsecase {
	return &gatewayUsecase{
		presenceRepo: presenceRepo,
		typingRepo:   typingRepo,
		hub:          hub,
	}
}

func (uc *gatewayUsecase) HandleEvent(ctx context.Context, client GatewayClient, event events.Event) {
	metric.RecordWSEvent(event.Type)

	var err error

	switch event.Type {
	case events.TypeJoinRoom:
		err = uc.handleJoinRoom(client, event.Data)
	case events.TypeUserOnline:
		err = uc.handleUserOnline(client, event.Data)
	case events.TypeSendMessage:
		err = uc.handleSendMessage(client, event.Data)
	case events.TypeTypingStart:
		err = uc.handleTypingStart(client, event.Data)
	case events.TypeTypingStop:
		err = uc.handleTypingStop(client, event.Data)
	case events.TypeMessageRead:
		err = uc.handleMessageRead(client, event.Data)
	case events.TypeRoomUpdated:
		err = uc.handleRoomUpdated(client, event.Data)
	case events.TypeUserRemoved:
		err = uc.handleUserRemoved(client, event.Data)
	default:
		err = fmt.Errorf("unknown event type %q", event.Type)
	}

	if err != nil {
		slog.Warn(
			"handle gateway event",
			slog.String(constant.Event, event.Type),
			slog.Any(constant.ConnID, client.ConnID()),
			slog.Any(constant.Error, err),
		)
		uc.sendError(client, err)
	}
}

func (uc *gatewayUsecase) handleJoinRoom(client GatewayClient, data json.RawMessage) error {
	var p events.JoinRoom
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal join-room: %w", err)
	}

	uc.hub.Join(client, p.RoomID)

	return nil
}

func (uc *gatewayUsecase) handleUserOnline(client GatewayClient, data json.RawMessage) error {
	var p events.UserOnline
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal user-online: %w", err)
	}

	uc.presenceRepo.Set(p.UserID, client.ConnID())

	return uc.broadcast(p.RoomID, events.TypeUserStatusChange, events.UserStatusChange{
		UserID: p.UserID,
		Status: events.StatusOnline,
	}, nil)
}

func (uc *gatewayUsecase) handleSendMessage(client GatewayClient, data json.RawMessage) error {
	var p events.SendMessage
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal send-message: %w", err)
	}

	return uc.broadcast(p.RoomID, events.TypeNewMessage, events.NewMessage{Message: p.Message}, client)
}

func (uc *gatewayUsecase) handleTypingStart(client GatewayClient, data json.RawMessage) error {
	var p events.TypingStart
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal typing-start: %w", err)
	}

	uc.typingRepo.Add(p.RoomID, p.UserID, p.UserName)

	return uc.broadcast(p.RoomID, events.TypeUserTyping, events.UserTyping{
		UserID:   p.UserID,
		UserName: p.UserName,
	}, client)
}

func (uc *gatewayUsecase) handleTypingStop(client GatewayClient, data json.RawMessage) error {
	var p events.TypingStop
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal typing-stop: %w", err)
	}

	uc.typingRepo.Remove(p.RoomID, p.UserID)

	return uc.broadcast(p.RoomID, events.TypeUserStoppedTyping, events.UserStoppedTyping{UserID: p.UserID}, client)
}

func (uc *gatewayUsecase) handleMessageRead(client GatewayClient, data json.RawMessage) error {
	var p events.MessageRead
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal message-read: %w", err)
	}

	// Relay only; the durable markRead happened over REST before this event.
	return uc.broadcast(p.RoomID, events.TypeMessageReadUpdate, events.MessageReadUpdate{
		MessageID: p.MessageID,
		UserID:    p.UserID,
	}, client)
}

func (uc *gatewayUsecase) handleRoomUpdated(client GatewayClient, data json.RawMessage) error {
	var p events.RoomUpdated
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal room-updated: %w", err)
	}

	return uc.broadcast(p.RoomID, events.TypeRoomUpdated, p, client)
}

func (uc *gatewayUsecase) handleUserRemoved(client GatewayClient, data json.RawMessage) error {
	var p events.UserRemoved
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal user-removed: %w", err)
	}

	return uc.broadcast(p.RoomID, events.TypeUserRemoved, p, client)
}

// HandleDisconnect tears down everything the connection owned: its presence
// entry (and no other), its typing entries, and its room subscriptions.
// The offline status is broadcast per joined room, not globally.
func (uc *gatewayUsecase) HandleDisconnect(ctx context.Context, client GatewayClient) {
	rooms := uc.hub.Leave(client)

	for _, roomID := range uc.typingRepo.ClearUser(client.UserID()) {
		if err := uc.broadcast(roomID, events.TypeUserStoppedTyping, events.UserStoppedTyping{UserID: client.UserID()}, client); err != nil {
			slog.Error("broadcast typing cleanup", slog.Any(constant.Error, err))
		}
	}

	if userID, ok := uc.presenceRepo.Remove(client.ConnID()); ok {
		for _, roomID := range rooms {
			err := uc.broadcast(roomID, events.TypeUserStatusChange, events.UserStatusChange{
				UserID: userID,
				Status: events.StatusOffline,
			}, client)
			if err != nil {
				slog.Error("broadcast offline status", slog.Any(constant.Error, err))
			}
		}
	}
}

func (uc *gatewayUsecase) broadcast(roomID uuid.UUID, eventType string, payload any, exclude GatewayClient) error {
	msg, err := events.Marshal(eventType, payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	uc.hub.Broadcast(roomID, msg, exclude)

	return nil
}

func (uc *gatewayUsecase) sendError(client GatewayClient, cause error) {
	msg, err := events.Marshal(events.TypeError, events.Error{Message: cause.Error()})
	if err != nil {
		slog.Error("marshal error event", slog.Any(constant.Error, err))
		return
	}

	client.Send(msg)
}
