package server

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"taskTracker/internal/auth"
	"taskTracker/internal/protocol"
	"taskTracker/internal/service"
	"taskTracker/repository"
)

// Operations is the business surface a Dispatcher drives.
type Operations interface {
	Register(ctx context.Context, username, password string) error
	AddTask(ctx context.Context, description string) error
	GetTasks(ctx context.Context) ([]string, error)
}

// Dispatcher turns one request payload into one response body.
type Dispatcher struct {
	ops    Operations
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger discards output.
func NewDispatcher(ops Operations, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{ops: ops, logger: logger}
}

// Dispatch never fails: every error is mapped to a response body.
func (d *Dispatcher) Dispatch(ctx context.Context, payload []byte) string {
	req, err := protocol.ParseRequest(payload)
	if err != nil {
		d.logger.Debug("rejected request", zap.Error(err))
		return protocol.RespUnknownCommand
	}
	log := d.logger.With(zap.String("command", string(req.Command)), zap.String("username", req.Args[0]))

	switch req.Command {
	case protocol.CmdGetTasks:
		tasks, err := d.ops.GetTasks(withIdentity(ctx, req.Args[0]))
		if err != nil {
			return d.lookupFailure(log, err)
		}
		return protocol.EncodeTaskList(tasks)

	case protocol.CmdAddTask:
		if err := d.ops.AddTask(withIdentity(ctx, req.Args[0]), req.Args[1]); err != nil {
			return d.lookupFailure(log, err)
		}
		return protocol.RespOK

	case protocol.CmdRegister:
		err := d.ops.Register(ctx, req.Args[0], req.Args[1])
		switch {
		case err == nil:
			return protocol.RespSuccess
		case errors.Is(err, repository.ErrConflict), errors.Is(err, service.ErrInvalidUsername):
			log.Debug("registration refused", zap.Error(err))
		default:
			log.Error("registration failed", zap.Error(err))
		}
		return protocol.RespFailure
	}
	return protocol.RespUnknownCommand
}

// withIdentity attaches the username named by the request as the acting principal.
func withIdentity(ctx context.Context, username string) context.Context {
	return auth.WithPrincipal(ctx, auth.ClaimFromRequest(username))
}

func (d *Dispatcher) lookupFailure(log *zap.Logger, err error) string {
	if errors.Is(err, repository.ErrNotFound) {
		log.Debug("unknown user", zap.Error(err))
		return protocol.RespNotFound
	}
	log.Error("request failed", zap.Error(err))
	return protocol.RespError
}
