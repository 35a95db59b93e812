package database

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("user is not a participant of the room")
	ErrEmptyMessage    = errors.New("message has no content and no attachment")
)
