package game

import "errors"

var (
	ErrRoomNotFound      = errors.New("Room not found")
	ErrRoomFull          = errors.New("Room full")
	ErrInvalidMaxPlayers = errors.New("maxPlayers must be at least 2")
	ErrInvalidShotCount  = errors.New("shotsPerPlayer must be at least 1")
)
