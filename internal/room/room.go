package room

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/player"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("room")
	meter  = otel.Meter("room")
)

// Room is the game controller for one page: it owns a single board and the
// connections rendering it. Turn, winner and status are never stored; they
// are derived from the board on demand.
type Room struct {
	ID string

	mu         sync.Mutex
	board      game.Board
	players    []*player.Player
	lastActive time.Time
	now        func() time.Time
	metrics    *roomMetrics
}

// NewRoom creates a room with an empty board.
func NewRoom(id string) *Room {
	return &Room{
		ID:         id,
		players:    make([]*player.Player, 0, 1),
		lastActive: time.Now(),
		now:        time.Now,
		metrics:    defaultMetrics(),
	}
}

// PlaceMark writes the next mark into the cell at index. Occupied cells,
// finished games and indices outside the board are silently ignored. The
// result reports whether the board changed.
func (r *Room) PlaceMark(ctx context.Context, index int) bool {
	ctx, span := tracer.Start(ctx, "room.PlaceMark", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("move.cell", index),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = r.now()

	next, ok := r.board.Place(index)
	span.SetAttributes(attribute.Bool("move.accepted", ok))
	r.metrics.moves.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", ok)))
	if !ok {
		slog.DebugContext(ctx, "ignoring move", "room.id", r.ID, "cell", index, "board", r.board.String())
		return false
	}

	mark := next[index]
	r.board = next
	slog.DebugContext(ctx, "move placed", "room.id", r.ID, "cell", index, "mark", mark, "board", r.board.String())

	if result, winner := game.Result(r.board); result != game.ResultInProgress {
		r.metrics.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("result", string(result))))
		slog.InfoContext(ctx, "game finished", "room.id", r.ID, "result", result, "winner", winner)
	}

	r.broadcastLocked(ctx)
	return true
}

// Restart resets the board to all empty cells.
func (r *Room) Restart(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.Restart", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = r.now()
	r.board = game.Board{}
	r.metrics.restarts.Add(ctx, 1)
	slog.InfoContext(ctx, "game restarted", "room.id", r.ID)

	r.broadcastLocked(ctx)
}

// Board returns a copy of the current board.
func (r *Room) Board() game.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board
}

// Status returns the status line for the current board.
func (r *Room) Status() string {
	return game.Status(r.Board())
}

// LastActive returns the time of the last move, restart or attach.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}
