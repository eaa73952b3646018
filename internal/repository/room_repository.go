package repository

import (
	"context"
	"ctchen222/tictactoe-solo/internal/room"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.room")

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

// RoomRepository defines the interface for room lookups. Rooms live only in
// process memory; nothing outlives the server.
type RoomRepository interface {
	Create(ctx context.Context, id string) (*room.Room, error)
	FindByID(ctx context.Context, id string) (*room.Room, error)
	DeleteIfIdle(ctx context.Context, id string, before time.Time) (bool, error)
	ListIdle(ctx context.Context, before time.Time) ([]*room.Room, error)
	List(ctx context.Context) ([]*room.Room, error)
}

type memoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
}

// NewRoomRepository creates a new in-memory RoomRepository.
func NewRoomRepository() RoomRepository {
	return &memoryRoomRepository{rooms: make(map[string]*room.Room)}
}

// Create stores a new room with an empty board.
func (r *memoryRoomRepository) Create(ctx context.Context, id string) (*room.Room, error) {
	_, span := tracer.Start(ctx, "RoomRepository.Create", trace.WithAttributes(attribute.String("room.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; ok {
		return nil, ErrRoomExists
	}
	rm := room.NewRoom(id)
	r.rooms[id] = rm
	return rm, nil
}

// FindByID retrieves a room.
func (r *memoryRoomRepository) FindByID(ctx context.Context, id string) (*room.Room, error) {
	_, span := tracer.Start(ctx, "RoomRepository.FindByID", trace.WithAttributes(attribute.String("room.id", id)))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// DeleteIfIdle removes a room only if it is still idle at the time of the
// call: no attached players and no activity since before. A room touched
// after it was listed as idle is kept.
func (r *memoryRoomRepository) DeleteIfIdle(ctx context.Context, id string, before time.Time) (bool, error) {
	_, span := tracer.Start(ctx, "RoomRepository.DeleteIfIdle", trace.WithAttributes(attribute.String("room.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return false, ErrRoomNotFound
	}
	if !isIdle(rm, before) {
		span.SetAttributes(attribute.Bool("room.deleted", false))
		return false, nil
	}
	delete(r.rooms, id)
	span.SetAttributes(attribute.Bool("room.deleted", true))
	return true, nil
}

// ListIdle returns rooms with no attached players whose last activity is
// before the given time.
func (r *memoryRoomRepository) ListIdle(ctx context.Context, before time.Time) ([]*room.Room, error) {
	_, span := tracer.Start(ctx, "RoomRepository.ListIdle")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var idle []*room.Room
	for _, rm := range r.rooms {
		if isIdle(rm, before) {
			idle = append(idle, rm)
		}
	}
	span.SetAttributes(attribute.Int("rooms.idle", len(idle)))
	return idle, nil
}

// List returns every room.
func (r *memoryRoomRepository) List(ctx context.Context) ([]*room.Room, error) {
	_, span := tracer.Start(ctx, "RoomRepository.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*room.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm)
	}
	return out, nil
}

func isIdle(rm *room.Room, before time.Time) bool {
	return rm.PlayerCount() == 0 && rm.LastActive().Before(before)
}
