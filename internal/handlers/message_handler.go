package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/campushub/chat-service/internal/database"
	"github.com/campushub/chat-service/internal/handlers/dto"
	"github.com/campushub/chat-service/internal/websocket"
)

// MessageHandler обрабатывает события канала доставки
type MessageHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewMessageHandler(db *database.Database, hub *websocket.Hub) *MessageHandler {
	return &MessageHandler{
		db:  db,
		hub: hub,
	}
}

func (h *MessageHandler) HandleMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeJoinRoom:
		return h.handleJoinRoom(client, msg)

	case websocket.TypeLeaveRoom:
		return h.handleLeaveRoom(client, msg)

	case websocket.TypeSendMessage:
		return h.handleSendMessage(client, msg)

	case websocket.TypeTyping:
		return h.handleTyping(client, msg)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		return nil
	}
}

// handleJoinRoom подписывает соединение на комнату. Членство проверяется
// по хранилищу, а не по состоянию клиента.
func (h *MessageHandler) handleJoinRoom(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	room, err := h.db.GetRoom(msg.RoomID.String())
	if err != nil {
		return websocket.ErrRoomNotFound
	}

	if !room.HasParticipant(client.UserID) {
		return websocket.ErrForbidden
	}

	h.hub.JoinRoom(client, *msg.RoomID)

	return nil
}

func (h *MessageHandler) handleLeaveRoom(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	h.hub.LeaveRoom(client, *msg.RoomID)

	return nil
}

func (h *MessageHandler) handleSendMessage(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	if !client.IsInRoom(*msg.RoomID) {
		return websocket.ErrNotSubscribed
	}

	var payload dto.MessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return err
	}

	if payload.Content == "" && payload.Attachment == nil {
		return websocket.ErrInvalidMessage
	}

	if _, err := deliverMessage(h.db, h.hub, *msg.RoomID, client.UserID, payload.Content, payload.Attachment); err != nil {
		return err
	}

	go h.db.UpdateLastSeen(client.UserID.String())

	return nil
}

// handleTyping ретранслирует статус набора текста остальным подписчикам.
// Ничего не персистится, получатели сами гасят индикатор по таймауту.
func (h *MessageHandler) handleTyping(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	if !client.IsInRoom(*msg.RoomID) {
		return websocket.ErrNotSubscribed
	}

	var payload dto.TypingPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return err
	}

	user, err := h.db.GetUser(client.UserID.String())
	if err != nil {
		return err
	}

	response := dto.TypingResponse{
		RoomID:   *msg.RoomID,
		UserID:   client.UserID,
		Username: user.Username,
		IsTyping: payload.IsTyping,
	}

	data, err := json.Marshal(response)
	if err != nil {
		return err
	}

	event := websocket.Message{
		Type:      websocket.TypeUserTyping,
		RoomID:    msg.RoomID,
		UserID:    client.UserID,
		Data:      data,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.hub.SendToRoomExcept(*msg.RoomID, eventData, client.ID)

	return nil
}
