package hub

import (
	"context"
	"ctchen222/tictactoe-solo/internal/hub/types"
	"ctchen222/tictactoe-solo/internal/player"
	"ctchen222/tictactoe-solo/internal/repository"
	"ctchen222/tictactoe-solo/internal/room"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

const (
	DefaultHeartbeatInterval = 10 * time.Second
	DefaultRoomIdleTimeout   = 30 * time.Minute
)

// Options tunes the hub's background work.
type Options struct {
	HeartbeatInterval time.Duration
	RoomIdleTimeout   time.Duration
}

// Hub manages all the rooms and the connections attached to them.
type Hub struct {
	rooms      repository.RoomRepository
	register   chan *types.RegistrationRequest
	unregister chan *types.UnregistrationRequest
	opts       Options
	now        func() time.Time
	done       chan struct{}
}

// NewHub creates a new hub.
func NewHub(rooms repository.RoomRepository, opts Options) *Hub {
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if opts.RoomIdleTimeout <= 0 {
		opts.RoomIdleTimeout = DefaultRoomIdleTimeout
	}
	return &Hub{
		rooms:      rooms,
		register:   make(chan *types.RegistrationRequest),
		unregister: make(chan *types.UnregistrationRequest),
		opts:       opts,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// Register returns the channel used to attach connections to rooms.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}

// Run processes registrations, heartbeats and idle-room eviction until ctx
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	pingTicker := time.NewTicker(h.opts.HeartbeatInterval)
	cleanupTicker := time.NewTicker(cleanupInterval(h.opts.RoomIdleTimeout))
	defer func() {
		pingTicker.Stop()
		cleanupTicker.Stop()
	}()

	slog.InfoContext(ctx, "Hub started",
		"heartbeat_interval", h.opts.HeartbeatInterval,
		"room_idle_timeout", h.opts.RoomIdleTimeout)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Hub stopping")
			return

		case req := <-h.register:
			h.handleRegistration(req)

		case req := <-h.unregister:
			h.handleUnregistration(ctx, req)

		case <-pingTicker.C:
			h.pingRooms(ctx)

		case <-cleanupTicker.C:
			h.EvictIdleRooms(ctx)
		}
	}
}

// CreateRoom creates a room with a fresh id.
func (h *Hub) CreateRoom(ctx context.Context) (*room.Room, error) {
	ctx, span := tracer.Start(ctx, "hub.CreateRoom")
	defer span.End()

	id := uuid.New().String()
	span.SetAttributes(attribute.String("room.id", id))

	rm, err := h.rooms.Create(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create room")
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	slog.InfoContext(ctx, "Room created", "room.id", id)
	return rm, nil
}

// GetRoom looks up an existing room.
func (h *Hub) GetRoom(ctx context.Context, id string) (*room.Room, error) {
	return h.rooms.FindByID(ctx, id)
}

// GetOrCreateRoom returns the room for id, or a new room when id is empty or
// the room no longer exists (evicted or from before a restart).
func (h *Hub) GetOrCreateRoom(ctx context.Context, id string) (*room.Room, error) {
	if id != "" {
		rm, err := h.rooms.FindByID(ctx, id)
		if err == nil {
			return rm, nil
		}
		if !errors.Is(err, repository.ErrRoomNotFound) {
			return nil, err
		}
	}
	return h.CreateRoom(ctx)
}

func (h *Hub) handleRegistration(req *types.RegistrationRequest) {
	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracer.Start(ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("player.id", req.Player.ID),
		attribute.String("room.id", req.RoomID),
	))
	defer span.End()

	rm, err := h.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		slog.WarnContext(ctx, "Registration for unknown room", "room.id", req.RoomID, "player.id", req.Player.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown room")
		if err := req.Player.Conn.Close(); err != nil {
			slog.DebugContext(ctx, "error closing rejected connection", "player.id", req.Player.ID, "error", err)
		}
		return
	}

	rm.AddPlayer(ctx, req.Player)
	slog.InfoContext(ctx, "Player attached to room", "player.id", req.Player.ID, "room.id", rm.ID)

	// The read pump outlives the upgrade request, so it gets a fresh root
	// context linked to the registration span.
	pumpCtx := trace.ContextWithSpanContext(context.Background(), span.SpanContext())
	go rm.ReadPump(pumpCtx, req.Player, func(p *player.Player) {
		select {
		case h.unregister <- &types.UnregistrationRequest{Player: p, RoomID: rm.ID}:
		case <-h.done:
		}
	})
}

func (h *Hub) handleUnregistration(ctx context.Context, req *types.UnregistrationRequest) {
	rm, err := h.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		slog.DebugContext(ctx, "Unregistration for unknown room", "room.id", req.RoomID, "player.id", req.Player.ID)
		return
	}
	if rm.RemovePlayer(req.Player.ID) {
		slog.InfoContext(ctx, "Player detached from room", "player.id", req.Player.ID, "room.id", rm.ID, "players.count", rm.PlayerCount())
	}
}

func (h *Hub) pingRooms(ctx context.Context) {
	rooms, err := h.rooms.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list rooms for heartbeat", "error", err)
		return
	}
	for _, rm := range rooms {
		rm.Ping(ctx)
	}
}

// EvictIdleRooms deletes rooms that have had no connection and no activity
// for longer than the idle timeout. It returns how many rooms were removed.
func (h *Hub) EvictIdleRooms(ctx context.Context) int {
	ctx, span := tracer.Start(ctx, "hub.EvictIdleRooms")
	defer span.End()

	before := h.now().Add(-h.opts.RoomIdleTimeout)
	idle, err := h.rooms.ListIdle(ctx, before)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list idle rooms", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list idle rooms")
		return 0
	}

	evicted := 0
	for _, rm := range idle {
		deleted, err := h.rooms.DeleteIfIdle(ctx, rm.ID, before)
		if err != nil {
			slog.WarnContext(ctx, "Failed to evict idle room", "room.id", rm.ID, "error", err)
			continue
		}
		if !deleted {
			continue
		}
		evicted++
		slog.InfoContext(ctx, "Idle room evicted", "room.id", rm.ID)
	}
	span.SetAttributes(attribute.Int("rooms.evicted", evicted))
	return evicted
}

func cleanupInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Second {
		return time.Second
	}
	if interval > time.Minute {
		return time.Minute
	}
	return interval
}
