package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campushub/chat-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) GetRoom(id string) (*models.Room, error) {
	var room models.Room
	err := d.db.Preload("Participants").First(&room, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// GetUserRooms возвращает комнаты пользователя с числом непрочитанных,
// отсортированные по последней активности
func (d *Database) GetUserRooms(userID uuid.UUID) ([]models.Room, error) {
	var rooms []models.Room

	err := d.db.
		Joins("JOIN room_participants rp ON rp.room_id = rooms.id").
		Where("rp.user_id = ?", userID).
		Order("rooms.updated_at DESC").
		Preload("Participants").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	// Считаем непрочитанные отдельным запросом на комнату
	for i := range rooms {
		count, err := d.countUnread(rooms[i].ID, userID)
		if err != nil {
			return nil, err
		}
		rooms[i].UnreadCount = count
	}

	return rooms, nil
}

func (d *Database) countUnread(roomID, userID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("room_id = ? AND sender_id <> ?", roomID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = messages.id AND mr.user_id = ?)", userID).
		Count(&count).Error
	return count, err
}

// GetOrCreateDirectRoom находит или создает direct комнату пары пользователей.
// Уникальность гарантирует индекс по direct_key: при одновременных вызовах
// проигравший вставку перечитывает комнату победителя.
func (d *Database) GetOrCreateDirectRoom(userAID, userBID uuid.UUID) (*models.Room, error) {
	userA, err := d.GetUser(userAID.String())
	if err != nil {
		return nil, err
	}
	userB, err := d.GetUser(userBID.String())
	if err != nil {
		return nil, err
	}

	key := models.DirectRoomKey(userAID, userBID)

	var existing models.Room
	err = d.db.Preload("Participants").Where("direct_key = ?", key).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room := models.Room{
		Type:      models.RoomTypeDirect,
		DirectKey: &key,
	}

	// Вставка комнаты и привязка участников — одна транзакция: комната
	// с direct_key без участников навсегда заблокировала бы пару
	conflicted := false
	err = d.db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "direct_key"}}, DoNothing: true}).
			Create(&room)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			conflicted = true
			return nil
		}

		return tx.Model(&room).Association("Participants").Append(userA, userB)
	})
	if err != nil {
		return nil, err
	}

	if conflicted {
		// Проиграли гонку, комната уже создана
		var won models.Room
		if err := d.db.Preload("Participants").Where("direct_key = ?", key).First(&won).Error; err != nil {
			return nil, err
		}
		return &won, nil
	}

	room.Participants = []models.User{*userA, *userB}

	return &room, nil
}

// CreateGroupRoom создает групповую комнату. Создатель всегда попадает в
// участники, даже если его нет в списке.
func (d *Database) CreateGroupRoom(creatorID uuid.UUID, name string, participantIDs []string) (*models.Room, error) {
	ids := append([]string{creatorID.String()}, participantIDs...)

	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	users, err := d.GetUsersByIDs(unique)
	if err != nil {
		return nil, err
	}

	if len(users) != len(unique) {
		found := make(map[string]bool, len(users))
		for _, u := range users {
			found[u.ID.String()] = true
		}
		var missing []string
		for _, id := range unique {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, strings.Join(missing, ", "))
	}

	adminID := creatorID
	room := models.Room{
		Type:         models.RoomTypeGroup,
		Name:         name,
		AdminID:      &adminID,
		Participants: users,
	}

	if err := d.db.Create(&room).Error; err != nil {
		return nil, err
	}

	return &room, nil
}

// TouchLastMessage обновляет указатель последнего сообщения и updated_at
func (d *Database) TouchLastMessage(roomID, messageID uuid.UUID) error {
	return d.db.Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"updated_at":      time.Now(),
		}).Error
}
