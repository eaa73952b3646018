package room

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/player"
	"ctchen222/tictactoe-solo/internal/player/mocks"
	"ctchen222/tictactoe-solo/pkg/proto"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// recordingPlayer attaches a mocked connection that decodes every text frame
// onto a channel, in the order the write pump sends them.
func recordingPlayer(t *testing.T, ctrl *gomock.Controller, id string) (*player.Player, *mocks.MockConnection, <-chan proto.ServerToClientMessage) {
	t.Helper()
	conn := mocks.NewMockConnection(ctrl)
	received := make(chan proto.ServerToClientMessage, 64)
	conn.EXPECT().SetWriteDeadline(gomock.Any()).Return(nil).AnyTimes()
	conn.EXPECT().WriteMessage(websocket.TextMessage, gomock.Any()).DoAndReturn(func(_ int, data []byte) error {
		var msg proto.ServerToClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		received <- msg
		return nil
	}).AnyTimes()

	p := player.NewPlayer(id, conn)
	t.Cleanup(func() {
		p.MarkDisconnected()
		<-p.Done()
	})
	return p, conn, received
}

func next(t *testing.T, received <-chan proto.ServerToClientMessage) proto.ServerToClientMessage {
	t.Helper()
	select {
	case msg := <-received:
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "no update received")
		return proto.ServerToClientMessage{}
	}
}

func TestRoom_Scenario(t *testing.T) {
	ctx := context.Background()
	r := NewRoom("room-1")

	assert.Equal(t, "Next player: X", r.Status())

	require.True(t, r.PlaceMark(ctx, 0))
	assert.Equal(t, game.PlayerX, r.Board()[0])
	assert.Equal(t, "Next player: O", r.Status())

	for _, cell := range []int{3, 1, 4, 2} {
		require.True(t, r.PlaceMark(ctx, cell))
	}
	assert.Equal(t, game.PlayerX, game.CheckWinner(r.Board()))
	assert.Equal(t, "Winner: X", r.Status())

	before := r.Board()
	assert.False(t, r.PlaceMark(ctx, 8))
	assert.Equal(t, before, r.Board())

	r.Restart(ctx)
	assert.Equal(t, game.Board{}, r.Board())
	assert.Equal(t, "Next player: X", r.Status())
}

func TestRoom_Draw(t *testing.T) {
	ctx := context.Background()
	r := NewRoom("room-draw")

	// X O X / X O O / O X X
	for _, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		require.True(t, r.PlaceMark(ctx, cell), "cell %d", cell)
	}
	assert.Equal(t, game.None, game.CheckWinner(r.Board()))
	assert.Equal(t, "DRAW!", r.Status())
}

func TestRoom_PlaceMarkIgnoresInvalidMoves(t *testing.T) {
	ctx := context.Background()
	r := NewRoom("room-2")
	require.True(t, r.PlaceMark(ctx, 4))

	before := r.Board()
	assert.False(t, r.PlaceMark(ctx, 4), "occupied")
	assert.False(t, r.PlaceMark(ctx, -1), "below range")
	assert.False(t, r.PlaceMark(ctx, 9), "above range")
	assert.Equal(t, before, r.Board())
	assert.Equal(t, "Next player: O", r.Status())
}

func TestRoom_BroadcastsAfterEveryChange(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	r := NewRoom("room-3")

	p, _, received := recordingPlayer(t, ctrl, "page-1")
	r.AddPlayer(ctx, p)
	initial := next(t, received)
	assert.Equal(t, "Next player: X", initial.Status, "state is sent on attach")
	assert.Equal(t, "room-3", initial.RoomID)

	r.PlaceMark(ctx, 0)
	last := next(t, received)
	assert.Equal(t, proto.TypeUpdate, last.Type)
	assert.Equal(t, game.PlayerX, last.Board[0])
	assert.Equal(t, proto.ColorX, last.Colors[0])
	assert.Equal(t, proto.ColorEmpty, last.Colors[1])
	assert.Equal(t, game.PlayerO, last.Next)
	assert.Equal(t, "Next player: O", last.Status)

	// The ignored move must not re-render, so the next frame is the restart.
	r.PlaceMark(ctx, 0)
	r.Restart(ctx)
	assert.Equal(t, game.Board{}, next(t, received).Board)
}

func TestRoom_SkipsDisconnectedPlayers(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	r := NewRoom("room-4")

	p, _, received := recordingPlayer(t, ctrl, "page-1")
	r.AddPlayer(ctx, p)
	next(t, received)
	p.MarkDisconnected()

	r.PlaceMark(ctx, 0)
	<-p.Done()
	assert.Empty(t, received)
}

func TestRoom_RemovePlayer(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	r := NewRoom("room-5")

	p, _, _ := recordingPlayer(t, ctrl, "page-1")
	r.AddPlayer(ctx, p)
	assert.Equal(t, 1, r.PlayerCount())

	assert.True(t, r.RemovePlayer("page-1"))
	assert.False(t, r.RemovePlayer("page-1"))
	assert.Equal(t, 0, r.PlayerCount())
}

func TestRoom_WriteErrorDoesNotStopBroadcast(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	r := NewRoom("room-6")

	broken := mocks.NewMockConnection(ctrl)
	broken.EXPECT().SetWriteDeadline(gomock.Any()).Return(nil).AnyTimes()
	broken.EXPECT().WriteMessage(websocket.TextMessage, gomock.Any()).Return(errors.New("broken pipe")).Times(1)
	broken.EXPECT().Close().Return(nil).Times(1)
	bp := player.NewPlayer("broken", broken)
	r.AddPlayer(ctx, bp)
	<-bp.Done()
	assert.False(t, bp.Connected(), "a failed write disconnects the player")

	p, _, received := recordingPlayer(t, ctrl, "page-2")
	r.AddPlayer(ctx, p)
	next(t, received)

	r.PlaceMark(ctx, 2)
	assert.Equal(t, game.PlayerX, next(t, received).Board[2])
}

func TestRoom_Ping(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	r := NewRoom("room-7")

	p, conn, received := recordingPlayer(t, ctrl, "page-1")
	r.AddPlayer(ctx, p)
	next(t, received)

	pinged := make(chan struct{})
	conn.EXPECT().WriteMessage(websocket.PingMessage, gomock.Nil()).DoAndReturn(func(int, []byte) error {
		close(pinged)
		return nil
	}).Times(1)
	r.Ping(ctx)

	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("ping was not written")
	}
}

func TestRoom_StalledPlayerDoesNotBlockMoves(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	r := NewRoom("room-8")

	release := make(chan struct{})
	stalled := mocks.NewMockConnection(ctrl)
	stalled.EXPECT().SetWriteDeadline(gomock.Any()).Return(nil).AnyTimes()
	stalled.EXPECT().WriteMessage(gomock.Any(), gomock.Any()).DoAndReturn(func(int, []byte) error {
		<-release
		return errors.New("i/o timeout")
	}).AnyTimes()
	stalled.EXPECT().Close().Return(nil).AnyTimes()
	sp := player.NewPlayer("stalled", stalled)
	defer func() {
		close(release)
		<-sp.Done()
	}()
	r.AddPlayer(ctx, sp)

	p, _, received := recordingPlayer(t, ctrl, "page-2")
	r.AddPlayer(ctx, p)
	next(t, received)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			r.Restart(ctx)
		}
		r.PlaceMark(ctx, 0)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("room operations blocked behind a page that is not reading")
	}
	assert.False(t, sp.Connected(), "a page that stops reading is dropped")
	assert.Equal(t, game.PlayerX, r.Board()[0])
}
