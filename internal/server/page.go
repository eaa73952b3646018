package server

import (
	"ctchen222/tictactoe-solo/internal/api/response"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/room"
	"ctchen222/tictactoe-solo/pkg/proto"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

type cellView struct {
	Index int
	Mark  string
	Color string
}

type pageView struct {
	RoomID string
	Status string
	Rows   [][]cellView
}

func newPageView(state *proto.ServerToClientMessage) pageView {
	view := pageView{
		RoomID: state.RoomID,
		Status: state.Status,
	}
	for r, row := range state.Board.Rows() {
		cells := make([]cellView, 0, len(row))
		for c, mark := range row {
			i := r*game.BoardSide + c
			cells = append(cells, cellView{Index: i, Mark: string(mark), Color: state.Colors[i]})
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

// handlePage renders the board. A page without a room, or with one that no
// longer exists, is redirected to a fresh room so reloads keep their game.
func (s *Server) handlePage(c *gin.Context) {
	requested := c.Query("room")
	rm, err := s.hub.GetOrCreateRoom(c.Request.Context(), requested)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to open room", "room.id", requested, "error", err)
		response.AbortWithError(c, err)
		return
	}
	if rm.ID != requested {
		c.Redirect(http.StatusFound, roomURL(rm.ID))
		return
	}
	c.HTML(http.StatusOK, "index.html.tmpl", newPageView(rm.State()))
}

// handleCellForm is the no-script fallback for a cell click.
func (s *Server) handleCellForm(c *gin.Context) {
	rm, ok := s.formRoom(c)
	if !ok {
		return
	}
	// Unparseable cells fall through to PlaceMark's range check.
	cell, err := strconv.Atoi(c.Param("cell"))
	if err != nil {
		cell = -1
	}
	rm.PlaceMark(c.Request.Context(), cell)
	c.Redirect(http.StatusSeeOther, roomURL(rm.ID))
}

// handleRestartForm is the no-script fallback for the restart button.
func (s *Server) handleRestartForm(c *gin.Context) {
	rm, ok := s.formRoom(c)
	if !ok {
		return
	}
	rm.Restart(c.Request.Context())
	c.Redirect(http.StatusSeeOther, roomURL(rm.ID))
}

func (s *Server) formRoom(c *gin.Context) (*room.Room, bool) {
	rm, err := s.hub.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return nil, false
	}
	return rm, true
}

func roomURL(id string) string {
	return "/?room=" + url.QueryEscape(id)
}
