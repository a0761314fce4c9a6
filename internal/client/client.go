// Package client speaks the task protocol over a single TCP connection.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"taskTracker/internal/protocol"
)

var (
	// ErrNotFound is returned when the server does not know the named user.
	ErrNotFound = errors.New("user not found")
	// ErrRejected is returned when the server refuses a registration.
	ErrRejected = errors.New("registration rejected")
	// ErrClosed is returned by calls on a closed client.
	ErrClosed = errors.New("client is closed")
)

// ServerError carries a response body the client did not expect for the request.
type ServerError struct {
	Command  protocol.Command
	Response string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server replied %q", e.Command, e.Response)
}

// Config holds client settings.
type Config struct {
	// Address is host:port of the task server.
	Address string
	// ConnectTimeout bounds the initial dial.
	ConnectTimeout time.Duration
	// RequestTimeout bounds one request/response exchange when ctx has no deadline.
	RequestTimeout time.Duration
	// MaxFrameSize bounds response frames.
	MaxFrameSize int
}

// DefaultConfig returns a configuration for the default local server.
func DefaultConfig() *Config {
	return &Config{
		Address:        "127.0.0.1:8888",
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
		MaxFrameSize:   protocol.DefaultMaxFrameSize,
	}
}

// Client is safe for concurrent use; requests on one connection are serialized.
type Client struct {
	cfg *Config

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// Dial connects to the server named by cfg. A nil cfg uses DefaultConfig.
func Dial(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = protocol.DefaultMaxFrameSize
	}
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Address, err)
	}
	return &Client{cfg: cfg, conn: conn}, nil
}

// Close closes the connection. Further calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Do sends one request and returns the raw response body.
func (c *Client) Do(ctx context.Context, req *protocol.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok && c.cfg.RequestTimeout > 0 {
		deadline = time.Now().Add(c.cfg.RequestTimeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	// Unblock the exchange if ctx is cancelled mid-flight.
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	if err := protocol.WriteFrame(c.conn, req.Encode()); err != nil {
		return "", c.wrap(ctx, "send", err)
	}
	resp, err := protocol.ReadFrame(c.conn, c.cfg.MaxFrameSize)
	if err != nil {
		return "", c.wrap(ctx, "receive", err)
	}
	return string(resp), nil
}

func (c *Client) wrap(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	// The connection deadline can fire just before the context timer does.
	var ne net.Error
	if d, ok := ctx.Deadline(); ok && errors.As(err, &ne) && ne.Timeout() && !time.Now().Before(d) {
		return fmt.Errorf("%s: %w", op, context.DeadlineExceeded)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Register creates an account. It returns ErrRejected when the server refuses.
func (c *Client) Register(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.Contains(username, protocol.Delimiter) {
		return fmt.Errorf("%w: invalid username %q", ErrRejected, username)
	}
	resp, err := c.Do(ctx, &protocol.Request{Command: protocol.CmdRegister, Args: []string{username, password}})
	if err != nil {
		return err
	}
	switch resp {
	case protocol.RespSuccess:
		return nil
	case protocol.RespFailure:
		return ErrRejected
	}
	return &ServerError{Command: protocol.CmdRegister, Response: resp}
}

// AddTask appends a task for username.
func (c *Client) AddTask(ctx context.Context, username, description string) error {
	if strings.Contains(username, protocol.Delimiter) {
		return fmt.Errorf("%w: %q", ErrNotFound, username)
	}
	resp, err := c.Do(ctx, &protocol.Request{Command: protocol.CmdAddTask, Args: []string{username, description}})
	if err != nil {
		return err
	}
	switch resp {
	case protocol.RespOK:
		return nil
	case protocol.RespNotFound:
		return fmt.Errorf("%w: %q", ErrNotFound, username)
	}
	return &ServerError{Command: protocol.CmdAddTask, Response: resp}
}

// GetTasks lists the task descriptions of username in creation order.
func (c *Client) GetTasks(ctx context.Context, username string) ([]string, error) {
	if strings.Contains(username, protocol.Delimiter) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, username)
	}
	resp, err := c.Do(ctx, &protocol.Request{Command: protocol.CmdGetTasks, Args: []string{username}})
	if err != nil {
		return nil, err
	}
	switch resp {
	case protocol.RespNotFound:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, username)
	case protocol.RespError, protocol.RespUnknownCommand:
		return nil, &ServerError{Command: protocol.CmdGetTasks, Response: resp}
	}
	tasks, err := protocol.DecodeTaskList(resp)
	if err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return tasks, nil
}
