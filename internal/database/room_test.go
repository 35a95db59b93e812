package database

import (
	"sync"
	"testing"
	"time"

	"github.com/campushub/chat-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDirectRoomIdempotent(t *testing.T) {
	d := newTestDB(t)

	alice := createTestUser(t, d, "alice", models.RoleStudent)
	bob := createTestUser(t, d, "bob", models.RoleFaculty)

	room1, err := d.GetOrCreateDirectRoom(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomTypeDirect, room1.Type)
	require.Len(t, room1.Participants, 2)

	// Повторный запрос возвращает ту же комнату
	room2, err := d.GetOrCreateDirectRoom(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, room1.ID, room2.ID)

	// Порядок аргументов не важен
	room3, err := d.GetOrCreateDirectRoom(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, room1.ID, room3.ID)
}

func TestGetOrCreateDirectRoomConcurrent(t *testing.T) {
	d := newTestDB(t)

	alice := createTestUser(t, d, "alice", models.RoleStudent)
	bob := createTestUser(t, d, "bob", models.RoleFaculty)

	const goroutines = 8

	ids := make([]uuid.UUID, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			a, b := alice.ID, bob.ID
			if i%2 == 1 {
				a, b = b, a
			}
			room, err := d.GetOrCreateDirectRoom(a, b)
			if err == nil {
				ids[i] = room.ID
			}
		}(i)
	}
	wg.Wait()

	var count int64
	require.NoError(t, d.db.Model(&models.Room{}).Where("type = ?", models.RoomTypeDirect).Count(&count).Error)
	assert.EqualValues(t, 1, count, "concurrent calls must create exactly one direct room")

	for i := 1; i < goroutines; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestGetOrCreateDirectRoomRollsBackOnAttachFailure(t *testing.T) {
	d := newTestDB(t)

	alice := createTestUser(t, d, "alice", models.RoleStudent)
	bob := createTestUser(t, d, "bob", models.RoleFaculty)

	// Ломаем привязку участников: вставка комнаты должна откатиться,
	// иначе пара навсегда получит комнату без участников
	require.NoError(t, d.db.Migrator().DropTable("room_participants"))

	_, err := d.GetOrCreateDirectRoom(alice.ID, bob.ID)
	require.Error(t, err)

	var count int64
	require.NoError(t, d.db.Model(&models.Room{}).Where("type = ?", models.RoomTypeDirect).Count(&count).Error)
	assert.EqualValues(t, 0, count, "failed creation must not leave a room behind")

	// После восстановления повторный вызов создает полноценную комнату
	require.NoError(t, Migrate(d.db))

	room, err := d.GetOrCreateDirectRoom(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, room.Participants, 2)

	_, err = d.AppendMessage(room.ID, alice.ID, "hello", nil)
	require.NoError(t, err)
}

func TestGetOrCreateDirectRoomUnknownUser(t *testing.T) {
	d := newTestDB(t)

	alice := createTestUser(t, d, "alice", models.RoleStudent)

	_, err := d.GetOrCreateDirectRoom(alice.ID, uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateGroupRoomIncludesAdmin(t *testing.T) {
	d := newTestDB(t)

	admin := createTestUser(t, d, "admin", models.RoleAdmin)
	s1 := createTestUser(t, d, "student1", models.RoleStudent)
	s2 := createTestUser(t, d, "student2", models.RoleStudent)

	// Админ не указан в списке участников
	room, err := d.CreateGroupRoom(admin.ID, "Study Group", []string{s1.ID.String(), s2.ID.String()})
	require.NoError(t, err)

	require.Equal(t, models.RoomTypeGroup, room.Type)
	require.Equal(t, "Study Group", room.Name)
	require.NotNil(t, room.AdminID)
	assert.Equal(t, admin.ID, *room.AdminID)
	require.Len(t, room.Participants, 3)
	assert.True(t, room.HasParticipant(admin.ID), "admin must be a participant")
}

func TestCreateGroupRoomDedupesParticipants(t *testing.T) {
	d := newTestDB(t)

	admin := createTestUser(t, d, "admin", models.RoleAdmin)
	s1 := createTestUser(t, d, "student1", models.RoleStudent)

	room, err := d.CreateGroupRoom(admin.ID, "Dupes", []string{
		s1.ID.String(), s1.ID.String(), admin.ID.String(),
	})
	require.NoError(t, err)
	assert.Len(t, room.Participants, 2)
}

func TestCreateGroupRoomMissingUsers(t *testing.T) {
	d := newTestDB(t)

	admin := createTestUser(t, d, "admin", models.RoleAdmin)
	missing := uuid.NewString()

	_, err := d.CreateGroupRoom(admin.ID, "Ghost Group", []string{missing})
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), missing)
}

func TestGetUserRoomsOrderAndUnread(t *testing.T) {
	d := newTestDB(t)

	alice := createTestUser(t, d, "alice", models.RoleStudent)
	bob := createTestUser(t, d, "bob", models.RoleFaculty)
	admin := createTestUser(t, d, "admin", models.RoleAdmin)

	direct, err := d.GetOrCreateDirectRoom(alice.ID, bob.ID)
	require.NoError(t, err)

	group, err := d.CreateGroupRoom(admin.ID, "Group", []string{alice.ID.String()})
	require.NoError(t, err)

	// Два сообщения Боба в direct, одно админа в группе
	m1, err := d.AppendMessage(direct.ID, bob.ID, "hello", nil)
	require.NoError(t, err)
	require.NoError(t, d.TouchLastMessage(direct.ID, m1.ID))

	m2, err := d.AppendMessage(direct.ID, bob.ID, "you there?", nil)
	require.NoError(t, err)
	require.NoError(t, d.TouchLastMessage(direct.ID, m2.ID))

	time.Sleep(10 * time.Millisecond)

	m3, err := d.AppendMessage(group.ID, admin.ID, "welcome", nil)
	require.NoError(t, err)
	require.NoError(t, d.TouchLastMessage(group.ID, m3.ID))

	rooms, err := d.GetUserRooms(alice.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	// Группа активнее — первая
	assert.Equal(t, group.ID, rooms[0].ID)
	assert.EqualValues(t, 1, rooms[0].UnreadCount)

	assert.Equal(t, direct.ID, rooms[1].ID)
	assert.EqualValues(t, 2, rooms[1].UnreadCount)
	require.NotNil(t, rooms[1].LastMessage)
	assert.Equal(t, m2.ID, rooms[1].LastMessage.ID)

	// Боб свои сообщения "читал" — непрочитанных нет
	bobRooms, err := d.GetUserRooms(bob.ID)
	require.NoError(t, err)
	require.Len(t, bobRooms, 1)
	assert.EqualValues(t, 0, bobRooms[0].UnreadCount)
}

func TestTouchLastMessageBumpsUpdatedAt(t *testing.T) {
	d := newTestDB(t)

	alice := createTestUser(t, d, "alice", models.RoleStudent)
	bob := createTestUser(t, d, "bob", models.RoleFaculty)

	room, err := d.GetOrCreateDirectRoom(alice.ID, bob.ID)
	require.NoError(t, err)

	before := room.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	msg, err := d.AppendMessage(room.ID, alice.ID, "ping", nil)
	require.NoError(t, err)
	require.NoError(t, d.TouchLastMessage(room.ID, msg.ID))

	got, err := d.GetRoom(room.ID.String())
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(before))
	require.NotNil(t, got.LastMessageID)
	assert.Equal(t, msg.ID, *got.LastMessageID)
}
