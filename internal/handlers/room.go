package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/chat-service/internal/database"
	"github.com/campushub/chat-service/internal/handlers/dto"
	"github.com/campushub/chat-service/internal/middleware"
	"github.com/campushub/chat-service/internal/models"
	"github.com/campushub/chat-service/internal/websocket"
)

type RoomHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewRoomHandler(db *database.Database, hub *websocket.Hub) *RoomHandler {
	return &RoomHandler{db: db, hub: hub}
}

// GetMyRooms возвращает комнаты пользователя с непрочитанными и онлайном
func (h *RoomHandler) GetMyRooms(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	rooms, err := h.db.GetUserRooms(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rooms"})
		return
	}

	roomsResponse := make([]gin.H, len(rooms))
	for i, room := range rooms {
		roomResponse := formatRoomResponse(&room)
		roomResponse["unread_count"] = room.UnreadCount

		if room.LastMessage != nil {
			roomResponse["last_message"] = gin.H{
				"id":         room.LastMessage.ID,
				"content":    room.LastMessage.Content,
				"sender_id":  room.LastMessage.SenderID,
				"created_at": room.LastMessage.CreatedAt,
			}
		}

		roomResponse["online_count"] = len(h.hub.GetRoomUsers(room.ID))

		roomsResponse[i] = roomResponse
	}

	c.JSON(http.StatusOK, gin.H{"rooms": roomsResponse})
}

// GetOrCreateDirectRoom находит или создает direct комнату с собеседником.
// Повторный запрос той же пары возвращает ту же комнату.
func (h *RoomHandler) GetOrCreateDirectRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	targetUserID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if userID == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot create direct room with yourself"})
		return
	}

	room, err := h.db.GetOrCreateDirectRoom(userID, targetUserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create direct room"})
		return
	}

	c.JSON(http.StatusOK, formatRoomResponse(room))
}

// CreateGroupRoom создает групповую комнату. Только для админов:
// роль — понятие авторизации, поэтому проверяется здесь, а не в хранилище.
func (h *RoomHandler) CreateGroupRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	role := c.MustGet(middleware.UserRoleKey).(string)

	if role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins can create group rooms"})
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.db.CreateGroupRoom(userID, req.Name, req.ParticipantIDs)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group room"})
		return
	}

	c.JSON(http.StatusCreated, formatRoomResponse(room))
}

// GetRoom возвращает комнату, если запрашивающий в ней состоит
func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
		return
	}

	response := formatRoomResponse(room)
	response["online_users"] = h.hub.GetRoomUsers(room.ID)

	c.JSON(http.StatusOK, response)
}

// formatRoomResponse форматирует ответ для комнаты
func formatRoomResponse(room *models.Room) gin.H {
	participants := make([]gin.H, len(room.Participants))
	for i, p := range room.Participants {
		participants[i] = gin.H{
			"id":         p.ID,
			"username":   p.Username,
			"role":       p.Role,
			"avatar_url": p.AvatarURL,
		}
	}

	response := gin.H{
		"id":           room.ID,
		"type":         room.Type,
		"name":         room.Name,
		"participants": participants,
		"created_at":   room.CreatedAt,
		"updated_at":   room.UpdatedAt,
	}

	if room.AdminID != nil {
		response["admin_id"] = room.AdminID
	}

	return response
}
