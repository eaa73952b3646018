package models

import "ctchen222/tictactoe-solo/pkg/proto"

// MoveRequest is the body of a cell click.
type MoveRequest struct {
	Cell *int `json:"cell" form:"cell" binding:"required,min=0,max=8"`
}

// RoomResponse wraps the rendered state of a room.
type RoomResponse struct {
	RoomID   string                       `json:"room"`
	Accepted *bool                        `json:"accepted,omitempty"`
	State    *proto.ServerToClientMessage `json:"state"`
}
