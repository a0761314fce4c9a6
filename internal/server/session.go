package server

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"taskTracker/internal/protocol"
)

// State is the position of a session in its request loop.
type State int32

const (
	StateReading State = iota
	StateDispatching
	StateWriting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateDispatching:
		return "dispatching"
	case StateWriting:
		return "writing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionInfo is a point-in-time view of a tracked connection.
type SessionInfo struct {
	ID       uint64    `json:"id"`
	Remote   string    `json:"remote"`
	State    string    `json:"state"`
	Since    time.Time `json:"since"`
	Requests uint64    `json:"requests"`
}

type session struct {
	id       uint64
	conn     net.Conn
	since    time.Time
	state    atomic.Int32
	requests atomic.Uint64

	closeOnce sync.Once
}

func newSession(id uint64, conn net.Conn) *session {
	return &session{id: id, conn: conn, since: time.Now()}
}

func (s *session) setState(st State) { s.state.Store(int32(st)) }

func (s *session) info() SessionInfo {
	return SessionInfo{
		ID:       s.id,
		Remote:   s.conn.RemoteAddr().String(),
		State:    State(s.state.Load()).String(),
		Since:    s.since,
		Requests: s.requests.Load(),
	}
}

// close releases the connection; only the first call has an effect.
func (s *session) close() {
	s.closeOnce.Do(func() {
		s.setState(StateClosed)
		_ = s.conn.Close()
	})
}

// closeReason describes why a read or write ended the session.
func closeReason(err error) string {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF):
		return "peer closed"
	case errors.Is(err, net.ErrClosed):
		return "closed locally"
	case errors.Is(err, protocol.ErrFrameTooLarge), errors.Is(err, io.ErrUnexpectedEOF):
		return "protocol error"
	case errors.As(err, &ne) && ne.Timeout():
		return "idle timeout"
	default:
		return "transport error"
	}
}
