package types

import (
	"context"
	"ctchen222/tictactoe-solo/internal/player"
)

// RegistrationRequest attaches a page's connection to a room.
type RegistrationRequest struct {
	Player *player.Player
	RoomID string
	Ctx    context.Context
}

// UnregistrationRequest detaches a page whose connection closed.
type UnregistrationRequest struct {
	Player *player.Player
	RoomID string
}
