package controller

import (
	"context"
	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/api/response"
	"ctchen222/tictactoe-solo/internal/repository"
	"ctchen222/tictactoe-solo/internal/room"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// RoomStore is the subset of the hub the controller needs.
type RoomStore interface {
	CreateRoom(ctx context.Context) (*room.Room, error)
	GetRoom(ctx context.Context, id string) (*room.Room, error)
}

// RoomController handles the JSON game endpoints.
type RoomController struct {
	rooms RoomStore
}

// NewRoomController creates a new RoomController.
func NewRoomController(rooms RoomStore) *RoomController {
	return &RoomController{rooms: rooms}
}

// Create starts a new game with an empty board.
func (rc *RoomController) Create(c *gin.Context) {
	rm, err := rc.rooms.CreateRoom(c.Request.Context())
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.CreatedResponse(c, models.RoomResponse{RoomID: rm.ID, State: rm.State()})
}

// Get returns the current state of a game.
func (rc *RoomController) Get(c *gin.Context) {
	rm, ok := rc.lookup(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, models.RoomResponse{RoomID: rm.ID, State: rm.State()})
}

// Move places the next mark. Ignored moves still succeed and report
// accepted=false with the unchanged state.
func (rc *RoomController) Move(c *gin.Context) {
	rm, ok := rc.lookup(c)
	if !ok {
		return
	}

	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid move request", "room.id", rm.ID, "error", err)
		response.AbortWithError(c, response.ErrInvalidMove)
		return
	}

	accepted := rm.PlaceMark(c.Request.Context(), *req.Cell)
	response.SuccessResponse(c, models.RoomResponse{RoomID: rm.ID, Accepted: &accepted, State: rm.State()})
}

// Restart clears the board.
func (rc *RoomController) Restart(c *gin.Context) {
	rm, ok := rc.lookup(c)
	if !ok {
		return
	}
	rm.Restart(c.Request.Context())
	response.SuccessResponse(c, models.RoomResponse{RoomID: rm.ID, State: rm.State()})
}

func (rc *RoomController) lookup(c *gin.Context) (*room.Room, bool) {
	rm, err := rc.rooms.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			response.AbortWithError(c, response.ErrRoomNotFound)
		} else {
			response.AbortWithError(c, err)
		}
		return nil, false
	}
	return rm, true
}
