package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"taskTracker/internal/protocol"
)

var (
	// ErrAlreadyRunning is returned by Start on a running server.
	ErrAlreadyRunning = errors.New("server is already running")
	// ErrInvalidAddress is returned by Start for a bind host that is not an IP literal.
	ErrInvalidAddress = errors.New("bind address must be an IPv4 or IPv6 literal")
)

// Options tunes a Server. Zero values mean: no idle timeout, default frame
// limit, unlimited connections.
type Options struct {
	IdleTimeout    time.Duration
	MaxFrameSize   int
	MaxConnections int
	// OnStateChange, if set, is called after the server starts or stops,
	// outside the server's lock.
	OnStateChange func(running bool)
}

// Server accepts TCP connections and runs one session per connection.
// It may be started again after Stop.
type Server struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
	opts       Options

	// mu serializes Start and Stop and guards the fields below it.
	mu       sync.Mutex
	running  bool
	listener net.Listener
	done     chan struct{} // closed when the accept loop exits
	cancel   context.CancelFunc

	// Connection tracking
	connMu   sync.Mutex
	conns    map[uint64]*session
	nextID   atomic.Uint64
	sessions sync.WaitGroup
}

// New creates a stopped server. A nil logger discards output.
func New(d *Dispatcher, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxFrameSize <= 0 {
		opts.MaxFrameSize = protocol.DefaultMaxFrameSize
	}
	return &Server{
		dispatcher: d,
		logger:     logger,
		opts:       opts,
		conns:      make(map[uint64]*session),
	}
}

// Start binds host:port and begins accepting in the background.
// Port 0 picks a free port; see Addr. Cancelling ctx stops the server.
func (s *Server) Start(ctx context.Context, host string, port int) error {
	if net.ParseIP(host) == nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, host)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	done, err := s.start(host, port)
	if err != nil {
		return err
	}
	s.notify(true)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping server: context cancelled")
			_ = s.Stop()
		case <-done:
		}
	}()
	return nil
}

// start binds the listener and launches the accept loop. The returned channel
// is closed when that loop exits.
func (s *Server) start(host string, port int) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, ErrAlreadyRunning
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.listener = ln
	s.done = done
	s.cancel = cancel
	s.running = true

	go s.acceptLoop(runCtx, ln, done)

	s.logger.Info("task server started", zap.String("addr", ln.Addr().String()))
	return done, nil
}

// Stop ends the accept loop, closes every tracked connection and waits for all
// sessions to finish. Calling Stop on a stopped server is a no-op.
func (s *Server) Stop() error {
	stopped, err := s.stop()
	if stopped {
		s.notify(false)
	}
	return err
}

func (s *Server) stop() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false, nil
	}

	err := s.listener.Close()
	<-s.done
	s.cancel()

	for _, sess := range s.snapshot() {
		sess.close()
	}
	s.sessions.Wait()

	s.running = false
	s.listener = nil
	s.done = nil
	s.cancel = nil

	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("error closing listener", zap.Error(err))
	} else {
		err = nil
	}
	s.logger.Info("task server stopped")
	return true, err
}

func (s *Server) notify(running bool) {
	if s.opts.OnStateChange != nil {
		s.opts.OnStateChange(running)
	}
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addr returns the bound address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ConnCount returns the number of tracked connections.
func (s *Server) ConnCount() int {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return len(s.conns)
}

// Sessions lists tracked connections ordered by id.
func (s *Server) Sessions() []SessionInfo {
	list := s.snapshot()
	out := make([]SessionInfo, 0, len(list))
	for _, sess := range list {
		out = append(out, sess.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, done chan struct{}) {
	defer close(done)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Debug("listener closed, exiting accept loop")
				return
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.logger.Error("error accepting connection", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.checkConnectionLimit() {
			s.logger.Warn("connection limit reached, rejecting connection", zap.String("remote", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		sess := newSession(s.nextID.Add(1), conn)
		s.trackSession(sess)
		s.sessions.Add(1)
		go s.serve(ctx, sess)
	}
}

// serve runs the request loop of one session. The connection is released and
// untracked exactly once, whichever way the loop ends.
func (s *Server) serve(ctx context.Context, sess *session) {
	log := s.logger.With(zap.Uint64("conn_id", sess.id), zap.String("remote", sess.conn.RemoteAddr().String()))
	reason := "closed locally"
	defer func() {
		sess.close()
		s.untrackSession(sess.id)
		log.Info("connection closed", zap.String("reason", reason), zap.Uint64("requests", sess.requests.Load()))
		s.sessions.Done()
	}()
	log.Info("connection accepted")

	for {
		sess.setState(StateReading)
		if s.opts.IdleTimeout > 0 {
			if err := sess.conn.SetReadDeadline(time.Now().Add(s.opts.IdleTimeout)); err != nil {
				reason = closeReason(err)
				return
			}
		}
		payload, err := protocol.ReadFrame(sess.conn, s.opts.MaxFrameSize)
		if err != nil {
			reason = closeReason(err)
			if reason == "transport error" || reason == "protocol error" {
				log.Warn("read failed", zap.Error(err))
			}
			return
		}

		sess.setState(StateDispatching)
		sess.requests.Add(1)
		resp := s.dispatcher.Dispatch(ctx, payload)

		sess.setState(StateWriting)
		if err := protocol.WriteFrame(sess.conn, []byte(resp)); err != nil {
			reason = closeReason(err)
			log.Warn("write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) checkConnectionLimit() bool {
	if s.opts.MaxConnections <= 0 {
		return true
	}
	return s.ConnCount() < s.opts.MaxConnections
}

func (s *Server) trackSession(sess *session) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conns[sess.id] = sess
}

func (s *Server) untrackSession(id uint64) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.conns, id)
}

func (s *Server) snapshot() []*session {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	out := make([]*session, 0, len(s.conns))
	for _, sess := range s.conns {
		out = append(out, sess)
	}
	return out
}
