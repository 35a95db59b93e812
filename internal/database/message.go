package database

import (
	"errors"

	"github.com/campushub/chat-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Attachment struct {
	URL  string
	Kind string
	Name string
}

// AppendMessage сохраняет сообщение. Отправитель сразу попадает в читавшие.
// Единственная точка создания сообщений.
func (d *Database) AppendMessage(roomID, senderID uuid.UUID, content string, attachment *Attachment) (*models.Message, error) {
	room, err := d.GetRoom(roomID.String())
	if err != nil {
		return nil, err
	}

	if !room.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	if content == "" && attachment == nil {
		return nil, ErrEmptyMessage
	}

	sender, err := d.GetUser(senderID.String())
	if err != nil {
		return nil, err
	}

	message := models.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}
	if attachment != nil {
		message.AttachmentURL = attachment.URL
		message.AttachmentKind = attachment.Kind
		message.AttachmentName = attachment.Name
	}

	err = d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Create(&models.MessageRead{
			MessageID: message.ID,
			UserID:    senderID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	message.Sender = *sender
	message.ReadBy = []models.User{*sender}

	return &message, nil
}

// GetRoomMessages возвращает историю комнаты по возрастанию created_at.
// Побочный эффект: все выданные чужие сообщения помечаются прочитанными.
func (d *Database) GetRoomMessages(roomID uuid.UUID, requesterID uuid.UUID, limit int, beforeID *uuid.UUID) ([]models.Message, error) {
	room, err := d.GetRoom(roomID.String())
	if err != nil {
		return nil, err
	}

	if !room.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}

	query := d.db.Where("room_id = ?", roomID)

	if beforeID != nil {
		var beforeMsg models.Message
		if err := d.db.First(&beforeMsg, "id = ?", beforeID).Error; err == nil {
			query = query.Where("created_at < ?", beforeMsg.CreatedAt)
		}
	}

	var messages []models.Message

	if limit > 0 {
		err = query.
			Order("created_at DESC").
			Limit(limit).
			Preload("Sender").
			Preload("ReadBy").
			Find(&messages).Error
		if err != nil {
			return nil, err
		}

		// Разворачиваем, чтобы старые сообщения были первыми
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	} else {
		err = query.
			Order("created_at ASC").
			Preload("Sender").
			Preload("ReadBy").
			Find(&messages).Error
		if err != nil {
			return nil, err
		}
	}

	if err := d.markMessagesRead(messages, requesterID); err != nil {
		return nil, err
	}

	return messages, nil
}

func (d *Database) markMessagesRead(messages []models.Message, readerID uuid.UUID) error {
	reader, err := d.GetUser(readerID.String())
	if err != nil {
		return err
	}

	var reads []models.MessageRead
	for i := range messages {
		if messages[i].SenderID == readerID || messages[i].IsReadBy(readerID) {
			continue
		}
		reads = append(reads, models.MessageRead{
			MessageID: messages[i].ID,
			UserID:    readerID,
		})
		messages[i].ReadBy = append(messages[i].ReadBy, *reader)
	}

	if len(reads) == 0 {
		return nil
	}

	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reads).Error
}

// MarkMessageRead идемпотентно добавляет пользователя в читавшие
func (d *Database) MarkMessageRead(messageID uuid.UUID, userID uuid.UUID) error {
	var message models.Message
	if err := d.db.First(&message, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	room, err := d.GetRoom(message.RoomID.String())
	if err != nil {
		return err
	}

	if !room.HasParticipant(userID) {
		return ErrNotParticipant
	}

	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.MessageRead{
		MessageID: messageID,
		UserID:    userID,
	}).Error
}

func (d *Database) GetMessage(id string) (*models.Message, error) {
	var message models.Message
	err := d.db.Preload("Sender").Preload("ReadBy").First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}
