package proto

import "ctchen222/tictactoe-solo/internal/game"

// Message types exchanged over the websocket.
const (
	TypeMove    = "move"
	TypeRestart = "restart"
	TypeUpdate  = "update"
)

// Cell colors used by the page, keyed by mark.
const (
	ColorX     = "red"
	ColorO     = "blue"
	ColorEmpty = "white"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type string `json:"type" validate:"required,oneof=move restart"`
	Cell *int   `json:"cell,omitempty" validate:"omitempty,cell"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string                 `json:"type" validate:"required"`
	RoomID string                 `json:"room,omitempty"`
	Board  game.Board             `json:"board"`
	Colors [game.BoardSize]string `json:"colors"`
	Next   game.PlayerMark        `json:"next,omitempty"`
	Result game.GameResult        `json:"result"`
	Winner game.PlayerMark        `json:"winner,omitempty"`
	Status string                 `json:"status"`
}

// NewUpdateMessage derives everything the page renders from a board.
func NewUpdateMessage(roomID string, board game.Board) *ServerToClientMessage {
	result, winner := game.Result(board)
	msg := &ServerToClientMessage{
		Type:   TypeUpdate,
		RoomID: roomID,
		Board:  board,
		Result: result,
		Winner: winner,
		Status: game.Status(board),
	}
	if result == game.ResultInProgress {
		msg.Next = game.NextMark(board)
	}
	for i, mark := range board {
		msg.Colors[i] = MarkColor(mark)
	}
	return msg
}

// MarkColor returns the glyph color for a mark.
func MarkColor(mark game.PlayerMark) string {
	switch mark {
	case game.PlayerX:
		return ColorX
	case game.PlayerO:
		return ColorO
	default:
		return ColorEmpty
	}
}
