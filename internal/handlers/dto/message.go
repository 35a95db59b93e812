package dto

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentPayload вложение сообщения
type AttachmentPayload struct {
	URL  string `json:"url" binding:"required,url"`
	Kind string `json:"kind" binding:"required,oneof=image file"`
	Name string `json:"name"`
}

// MessagePayload структура для входящих сообщений
type MessagePayload struct {
	Content    string             `json:"content"`
	Attachment *AttachmentPayload `json:"attachment,omitempty"`
}

// TypingPayload статус набора текста, не персистится
type TypingPayload struct {
	IsTyping bool `json:"is_typing"`
}

// TypingResponse рассылается подписчикам комнаты
type TypingResponse struct {
	RoomID   uuid.UUID `json:"room_id"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	IsTyping bool      `json:"is_typing"`
}

// MessageResponse структура для исходящих сообщений
type MessageResponse struct {
	ID         uuid.UUID          `json:"id"`
	RoomID     uuid.UUID          `json:"room_id"`
	SenderID   uuid.UUID          `json:"sender_id"`
	Content    string             `json:"content"`
	Attachment *AttachmentPayload `json:"attachment,omitempty"`
	ReadBy     []uuid.UUID        `json:"read_by"`
	CreatedAt  time.Time          `json:"created_at"`
	Sender     UserInfo           `json:"sender"`
}

type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role,omitempty"`
}
