package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"taskTracker/internal/auth"
	"taskTracker/internal/protocol"
	"taskTracker/repository"
)

// ErrInvalidUsername is returned by Register for names that cannot be addressed
// on the wire: blank, or containing the request delimiter. Blank names are the
// ones auth.RequirePrincipal refuses.
var ErrInvalidUsername = errors.New("invalid username")

// TaskService implements the register / add-task / get-tasks operations.
// Identity for AddTask and GetTasks comes from the auth.Principal in ctx.
type TaskService struct {
	Users  repository.UserRepositoryI
	Tasks  repository.TaskRepositoryI
	Logger *zap.Logger
}

// New builds a TaskService. A nil logger discards output.
func New(users repository.UserRepositoryI, tasks repository.TaskRepositoryI, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{Users: users, Tasks: tasks, Logger: logger}
}

// Register creates a user with a hashed password.
// It returns repository.ErrConflict when the username is taken, including when
// another session wins a concurrent registration of the same name.
func (s *TaskService) Register(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.Contains(username, protocol.Delimiter) {
		return ErrInvalidUsername
	}
	exists, err := s.Users.Exists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("register %q: %w", username, repository.ErrConflict)
	}
	u, err := s.Users.Create(ctx, username, auth.HashPassword(password))
	if err != nil {
		return err
	}
	s.Logger.Info("user registered", zap.String("username", u.Username), zap.Int64("user_id", u.ID))
	return nil
}

// AddTask appends a task for the principal in ctx.
// Unknown users yield repository.ErrNotFound and nothing is stored.
func (s *TaskService) AddTask(ctx context.Context, description string) error {
	userID, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	if _, err := s.Tasks.Create(ctx, userID, description); err != nil {
		return err
	}
	return nil
}

// GetTasks lists the principal's task descriptions in insertion order.
func (s *TaskService) GetTasks(ctx context.Context) ([]string, error) {
	userID, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.Tasks.ListDescriptions(ctx, userID)
}

func (s *TaskService) resolve(ctx context.Context) (int64, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		// An empty name cannot match a stored user.
		return 0, repository.ErrNotFound
	}
	return s.Users.FindID(ctx, p.Name)
}
