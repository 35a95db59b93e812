package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoomTypeDirect = "direct"
	RoomTypeGroup  = "group"
)

type Room struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type    string    `gorm:"not null;check:type IN ('direct','group')"`
	Name    string
	AdminID *uuid.UUID `gorm:"type:uuid"`

	// Ключ уникальности для direct комнат: отсортированная пара id участников.
	// NULL для групповых комнат.
	DirectKey *string `gorm:"uniqueIndex"`

	LastMessageID *uuid.UUID `gorm:"type:uuid"`
	LastMessage   *Message   `gorm:"foreignKey:LastMessageID"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Связи
	Participants []User    `gorm:"many2many:room_participants"`
	Messages     []Message `gorm:"foreignKey:RoomID"`

	// Вычисляется на пользователя, не хранится
	UnreadCount int64 `gorm:"-"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Room) HasParticipant(userID uuid.UUID) bool {
	for _, p := range r.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// DirectRoomKey строит ключ direct комнаты: пара id в лексикографическом порядке
func DirectRoomKey(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if first > second {
		first, second = second, first
	}
	return first + ":" + second
}
