package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/chat-service/internal/database"
	"github.com/campushub/chat-service/internal/handlers/dto"
	"github.com/campushub/chat-service/internal/middleware"
	"github.com/campushub/chat-service/internal/models"
	"github.com/campushub/chat-service/internal/websocket"
)

type HTTPMessageHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewHTTPMessageHandler(db *database.Database, hub *websocket.Hub) *HTTPMessageHandler {
	return &HTTPMessageHandler{db: db, hub: hub}
}

// GetRoomMessages возвращает историю комнаты. Все выданные чужие
// сообщения при этом помечаются прочитанными.
func (h *HTTPMessageHandler) GetRoomMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	// Параметры пагинации; limit=0 — вся история
	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var beforeID *uuid.UUID
	if before := c.Query("before"); before != "" {
		if id, err := uuid.Parse(before); err == nil {
			beforeID = &id
		}
	}

	messages, err := h.db.GetRoomMessages(roomID, userID, limit, beforeID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	result := make([]dto.MessageResponse, len(messages))
	for i := range messages {
		result[i] = formatMessageResponse(&messages[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": result,
		"has_more": limit > 0 && len(messages) == limit,
	})
}

// SendMessage отправляет сообщение через HTTP (альтернатива WebSocket)
func (h *HTTPMessageHandler) SendMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req dto.MessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Content == "" && req.Attachment == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message requires content or attachment"})
		return
	}

	message, err := deliverMessage(h.db, h.hub, roomID, userID, req.Content, req.Attachment)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	go h.db.UpdateLastSeen(userID.String())

	c.JSON(http.StatusCreated, formatMessageResponse(message))
}

// MarkMessageRead явная квитанция о прочтении: используется когда живое
// событие пришло в уже открытую комнату
func (h *HTTPMessageHandler) MarkMessageRead(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.db.MarkMessageRead(messageID, userID); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// deliverMessage — общий путь отправки для HTTP и WebSocket:
// сохранить, обновить указатель последнего сообщения, разослать подписчикам.
// Сообщение считается отправленным после сохранения; ошибки шагов 2 и 3
// логируются, но не возвращаются.
func deliverMessage(db *database.Database, hub *websocket.Hub, roomID, senderID uuid.UUID, content string, att *dto.AttachmentPayload) (*models.Message, error) {
	var storeAtt *database.Attachment
	if att != nil {
		storeAtt = &database.Attachment{
			URL:  att.URL,
			Kind: att.Kind,
			Name: att.Name,
		}
	}

	message, err := db.AppendMessage(roomID, senderID, content, storeAtt)
	if err != nil {
		return nil, err
	}

	if err := db.TouchLastMessage(roomID, message.ID); err != nil {
		log.Printf("Failed to touch last message for room %s: %v", roomID, err)
	}

	publishMessage(hub, message)

	return message, nil
}

// publishMessage рассылает receive_message подписчикам комнаты
func publishMessage(hub *websocket.Hub, message *models.Message) {
	response := formatMessageResponse(message)

	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal message %s: %v", message.ID, err)
		return
	}

	event := websocket.Message{
		Type:      websocket.TypeReceiveMessage,
		RoomID:    &message.RoomID,
		UserID:    message.SenderID,
		Data:      data,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event for message %s: %v", message.ID, err)
		return
	}

	hub.SendToRoom(message.RoomID, eventData)
}

// respondStoreError транслирует ошибки хранилища в HTTP статусы
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrRoomNotFound),
		errors.Is(err, database.ErrMessageNotFound),
		errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// formatMessageResponse форматирует ответ для сообщения
func formatMessageResponse(msg *models.Message) dto.MessageResponse {
	readBy := make([]uuid.UUID, len(msg.ReadBy))
	for i, u := range msg.ReadBy {
		readBy[i] = u.ID
	}

	response := dto.MessageResponse{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		ReadBy:    readBy,
		CreatedAt: msg.CreatedAt,
		Sender: dto.UserInfo{
			ID:        msg.Sender.ID,
			Username:  msg.Sender.Username,
			AvatarURL: msg.Sender.AvatarURL,
			Role:      msg.Sender.Role,
		},
	}

	if msg.AttachmentURL != "" {
		response.Attachment = &dto.AttachmentPayload{
			URL:  msg.AttachmentURL,
			Kind: msg.AttachmentKind,
			Name: msg.AttachmentName,
		}
	}

	return response
}
