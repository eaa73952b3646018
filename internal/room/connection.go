package room

import (
	"context"
	"ctchen222/tictactoe-solo/internal/player"
	"ctchen222/tictactoe-solo/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AddPlayer attaches a page to the room and sends it the current state.
func (r *Room) AddPlayer(ctx context.Context, p *player.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players = append(r.players, p)
	r.lastActive = r.now()
	r.send(ctx, p, r.stateLocked())
}

// RemovePlayer detaches a page. It reports whether the player was attached.
func (r *Room) RemovePlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			r.lastActive = r.now()
			return true
		}
	}
	return false
}

// PlayerCount returns the number of attached pages.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// State returns the update message for the current board.
func (r *Room) State() *proto.ServerToClientMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Room) stateLocked() *proto.ServerToClientMessage {
	return proto.NewUpdateMessage(r.ID, r.board)
}

func (r *Room) broadcastLocked(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("players.count", len(r.players)),
	))
	defer span.End()

	message := r.stateLocked()
	for _, p := range r.players {
		r.send(ctx, p, message)
	}
}

func (r *Room) send(ctx context.Context, p *player.Player, message *proto.ServerToClientMessage) {
	if !p.Connected() {
		return
	}

	span := trace.SpanFromContext(ctx)
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	if !p.Send(websocket.TextMessage, data) {
		slog.WarnContext(ctx, "player is not reading, update dropped", "player.id", p.ID, "room.id", r.ID)
		span.SetStatus(codes.Error, "Player send queue full")
	}
}

// Ping sends a websocket ping to every connected player.
func (r *Room) Ping(ctx context.Context) {
	r.mu.Lock()
	players := append([]*player.Player(nil), r.players...)
	r.mu.Unlock()

	for _, p := range players {
		if !p.Connected() {
			continue
		}
		if !p.Send(websocket.PingMessage, nil) {
			slog.WarnContext(ctx, "Failed to send ping to player, assuming disconnect", "player.id", p.ID, "room.id", r.ID)
		}
	}
}

// ReadPump reads click events from the player's connection until it fails,
// then closes the connection and calls onClose.
func (r *Room) ReadPump(ctx context.Context, p *player.Player, onClose func(*player.Player)) {
	ctx, span := tracer.Start(ctx, "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	defer func() {
		p.MarkDisconnected()
		if err := p.Conn.Close(); err != nil {
			slog.DebugContext(ctx, "error closing player connection", "player.id", p.ID, "error", err)
		}
		if onClose != nil {
			onClose(p)
		}
		slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID, "room.id", r.ID)
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Player connection error")
			}
			return
		}
		r.HandleMessage(ctx, p, msg)
	}
}
