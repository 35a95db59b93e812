package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrForbidden       = errors.New("not a participant of the room")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotSubscribed   = errors.New("not subscribed to the room")
)
