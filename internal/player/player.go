package player

import (
	"log/slog"
	"sync"
	"time"
)

// PlayerStatus tracks whether a page still has a live connection.
type PlayerStatus string

const (
	StatusConnected    PlayerStatus = "connected"
	StatusDisconnected PlayerStatus = "disconnected"
)

// sendBufferSize bounds the frames queued for a page that is not reading.
const sendBufferSize = 16

// WriteWait is the time allowed to write a single frame to the page.
const WriteWait = 10 * time.Second

//go:generate mockgen -destination=mocks/mock_connection.go -package=mocks . Connection

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

type frame struct {
	messageType int
	data        []byte
}

// Player represents one open page attached to a room. Both marks are played
// from the same page, so a player is a viewer-and-clicker, not a seat.
//
// Frames are queued by Send and written by the player's own write pump, so a
// page that stops reading never blocks the room that sends to it.
type Player struct {
	ID       string
	Conn     Connection
	Status   PlayerStatus
	LastSeen time.Time

	mu   sync.Mutex
	send chan frame
	done chan struct{}
}

// NewPlayer creates a connected player and starts its write pump.
func NewPlayer(id string, conn Connection) *Player {
	p := &Player{
		ID:       id,
		Conn:     conn,
		Status:   StatusConnected,
		LastSeen: time.Now(),
		send:     make(chan frame, sendBufferSize),
		done:     make(chan struct{}),
	}
	go p.writePump()
	return p
}

// Send queues one frame without blocking. A full queue means the page has
// stopped reading: the player is marked disconnected, its connection is
// closed and Send reports false.
func (p *Player) Send(messageType int, data []byte) bool {
	p.mu.Lock()
	if p.Status != StatusConnected || p.send == nil {
		p.mu.Unlock()
		return false
	}
	select {
	case p.send <- frame{messageType: messageType, data: data}:
		p.mu.Unlock()
		return true
	default:
	}
	p.disconnectLocked()
	p.mu.Unlock()

	slog.Warn("send queue full, dropping player", "player.id", p.ID)
	p.closeConn()
	return false
}

// writePump owns every write to the connection. A failed or timed out write
// disconnects the player and closes the connection, which also ends its
// read pump.
func (p *Player) writePump() {
	defer close(p.done)

	for f := range p.send {
		if err := p.write(f); err != nil {
			slog.Warn("error writing to player, assuming disconnect", "player.id", p.ID, "error", err)
			p.MarkDisconnected()
			p.closeConn()
			for range p.send {
			}
			return
		}
	}
}

func (p *Player) write(f frame) error {
	if err := p.Conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return p.Conn.WriteMessage(f.messageType, f.data)
}

func (p *Player) closeConn() {
	if err := p.Conn.Close(); err != nil {
		slog.Debug("error closing player connection", "player.id", p.ID, "error", err)
	}
}

// Done is closed once the write pump has flushed or dropped every queued
// frame after the player disconnected.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// MarkDisconnected records that the connection is gone. Frames already
// queued are still flushed.
func (p *Player) MarkDisconnected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnectLocked()
}

func (p *Player) disconnectLocked() {
	if p.Status == StatusDisconnected {
		return
	}
	p.Status = StatusDisconnected
	p.LastSeen = time.Now()
	if p.send != nil {
		close(p.send)
	}
}

// Connected reports whether frames can still be sent to the player.
func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Status == StatusConnected
}
