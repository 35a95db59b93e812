package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttachmentKindImage = "image"
	AttachmentKindFile  = "file"
)

type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID uuid.UUID `gorm:"type:uuid;not null"`
	Content  string

	AttachmentURL  string
	AttachmentKind string `gorm:"check:attachment_kind IN ('', 'image', 'file')"`
	AttachmentName string

	CreatedAt time.Time `gorm:"index"`

	// Связи
	Sender User   `gorm:"foreignKey:SenderID"`
	Room   Room   `gorm:"foreignKey:RoomID"`
	ReadBy []User `gorm:"many2many:message_reads"`
}

// MessageRead — join таблица читавших сообщение. Записи только добавляются.
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReadAt    time.Time `gorm:"autoCreateTime"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Message) IsReadBy(userID uuid.UUID) bool {
	for _, u := range m.ReadBy {
		if u.ID == userID {
			return true
		}
	}
	return false
}
